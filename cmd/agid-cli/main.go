package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	apiHost  string
	apiToken string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "agid-cli",
		Short: "CLI para monitorear Agid",
		Long:  `Una herramienta de línea de comandos para consultar el daemon Agid de forma remota.`,
	}

	rootCmd.PersistentFlags().StringVar(&apiHost, "host", "http://localhost:8080", "URL base de la API (ej: http://10.0.0.5:8080)")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("AGID_TOKEN"), "Token JWT (o variable AGID_TOKEN)")

	// === LOGIN ===
	var loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Obtener un token de acceso",
		Run:   runLogin,
	}
	loginCmd.Flags().String("user", "", "Usuario (requerido)")
	loginCmd.Flags().String("pass", "", "Contraseña (requerido)")

	// === MONITOREO ===
	var healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Verificar salud del daemon",
		Run:   runHealth,
	}

	var sessionsCmd = &cobra.Command{
		Use:   "sessions",
		Short: "Listar sesiones AGI activas",
		Run:   runSessions,
	}

	var handlersCmd = &cobra.Command{
		Use:   "handlers",
		Short: "Listar scripts AGI registrados",
		Run:   runHandlers,
	}

	var requestsCmd = &cobra.Command{
		Use:   "requests",
		Short: "Listar peticiones atendidas recientemente",
		Run:   runRequests,
	}
	requestsCmd.Flags().Int("limit", 20, "Cantidad de registros")

	rootCmd.AddCommand(loginCmd, healthCmd, sessionsCmd, handlersCmd, requestsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// --- HANDLERS ---

func runLogin(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	pass, _ := cmd.Flags().GetString("pass")

	if user == "" || pass == "" {
		fmt.Println("Error: --user y --pass son requeridos")
		return
	}

	body := map[string]string{"username": user, "password": pass}
	payload, _ := json.Marshal(body)

	resp, err := http.Post(fmt.Sprintf("%s/api/v1/login", apiHost), "application/json", bytes.NewBuffer(payload))
	if err != nil {
		fmt.Printf("Error de conexión: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		raw, _ := io.ReadAll(resp.Body)
		fmt.Printf("Error (%s): %s\n", resp.Status, string(raw))
		return
	}

	var result struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	fmt.Println("Login exitoso. Exporta el token para los demás comandos:")
	fmt.Printf("  export AGID_TOKEN=%s\n", result.Token)
}

func runHealth(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/health", apiHost))
	if err != nil {
		fmt.Printf("Error conectando a API: %v\n", err)
		return
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	fmt.Println(string(raw))
}

func runSessions(cmd *cobra.Command, args []string) {
	raw, ok := getAuthed(fmt.Sprintf("%s/api/v1/sessions", apiHost))
	if !ok {
		return
	}

	var result struct {
		Count    int `json:"count"`
		Sessions []struct {
			ID         string `json:"id"`
			Script     string `json:"script"`
			Channel    string `json:"channel"`
			UniqueID   string `json:"uniqueid"`
			RemoteAddr string `json:"remote_addr"`
		} `json:"sessions"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		fmt.Printf("Error parseando respuesta: %v\n", err)
		return
	}

	if result.Count == 0 {
		fmt.Println("No hay sesiones activas")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SCRIPT\tCANAL\tUNIQUEID\tORIGEN")
	fmt.Fprintln(w, "------\t-----\t--------\t------")
	for _, s := range result.Sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Script, s.Channel, s.UniqueID, s.RemoteAddr)
	}
	w.Flush()
}

func runHandlers(cmd *cobra.Command, args []string) {
	raw, ok := getAuthed(fmt.Sprintf("%s/api/v1/handlers", apiHost))
	if !ok {
		return
	}

	var result struct {
		Handlers []string `json:"handlers"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		fmt.Printf("Error parseando respuesta: %v\n", err)
		return
	}

	for _, name := range result.Handlers {
		fmt.Println(name)
	}
}

func runRequests(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	raw, ok := getAuthed(fmt.Sprintf("%s/api/v1/requests?limit=%d", apiHost, limit))
	if !ok {
		return
	}

	var logs []struct {
		Script     string `json:"script"`
		Channel    string `json:"channel"`
		UniqueID   string `json:"uniqueid"`
		Status     string `json:"status"`
		DurationMs int    `json:"duration_ms"`
		CreatedAt  string `json:"created_at"`
	}
	if err := json.Unmarshal(raw, &logs); err != nil {
		fmt.Printf("Error parseando respuesta: %v\n", err)
		return
	}

	if len(logs) == 0 {
		fmt.Println("No hay peticiones registradas")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "FECHA\tSCRIPT\tCANAL\tESTADO\tMS")
	fmt.Fprintln(w, "-----\t------\t-----\t------\t--")
	for _, l := range logs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", l.CreatedAt, l.Script, l.Channel, l.Status, l.DurationMs)
	}
	w.Flush()
}

// getAuthed hace un GET con el token Bearer y devuelve el cuerpo
func getAuthed(url string) ([]byte, bool) {
	if apiToken == "" {
		fmt.Println("Error: se requiere un token (--token o AGID_TOKEN). Usa 'agid-cli login' primero")
		return nil, false
	}

	req, _ := http.NewRequest("GET", url, nil)
	req.Header.Set("Authorization", "Bearer "+apiToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error de conexión: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		fmt.Printf("Error (%s): %s\n", resp.Status, string(raw))
		return nil, false
	}
	return raw, true
}
