package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"agid/internal/agid"
	"agid/internal/api"
	"agid/internal/auth"
	"agid/internal/config"
	"agid/internal/database"
	"agid/internal/fastagi"
	"agid/internal/websocket"
)

const defaultConfigPath = "/etc/agid/agid.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "start":
		cmdStart()
	case "handlers":
		cmdHandlers()
	case "status":
		cmdStatus()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Comando desconocido: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Agid - Daemon de decisiones FastAGI para Asterisk")
	fmt.Println()
	fmt.Println("Uso:")
	fmt.Println("  agid start       Inicia el daemon completo")
	fmt.Println("  agid handlers    Lista los scripts AGI registrados")
	fmt.Println("  agid status      Muestra cómo verificar el estado del daemon")
	fmt.Println()
}

// cmdStart inicia todos los servicios
func cmdStart() {
	log.Println("[Main] Agid Service v1.0")
	log.Println("[Main] Iniciando servicios...")

	// Cargar configuración
	configPath := os.Getenv("AGID_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("[Main] Error cargando configuración: %v", err)
	}

	// Conectar a base de datos
	dbConn, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("[Main] Error conectando a base de datos: %v", err)
	}
	defer dbConn.Close()

	repo := database.NewRepository(dbConn)
	log.Println("[Main] ✓ Base de datos conectada")

	// Hub de eventos para los monitores conectados por websocket
	hub := websocket.NewHub()
	go hub.Run()

	// Despachador de scripts AGI
	dispatcher := agid.NewDispatcher(repo, agid.NewRegistry(), hub)
	log.Printf("[Main] ✓ %d handlers registrados", len(dispatcher.Scripts()))

	// Iniciar servidor FastAGI
	agiServer := fastagi.NewServer(cfg.FastAGI.Address(), dispatcher.Handle)
	if err := agiServer.Start(); err != nil {
		log.Fatalf("[Main] Error iniciando FastAGI: %v", err)
	}
	defer agiServer.Stop()
	log.Println("[Main] ✓ Servidor FastAGI iniciado")

	// Iniciar API REST de monitoreo
	authn := auth.New(cfg.API.JWTSecret)
	apiServer := api.NewServer(cfg, repo, authn, agiServer, dispatcher, hub)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Fatalf("[Main] Error iniciando API: %v", err)
		}
	}()
	log.Println("[Main] ✓ Servidor API REST iniciado")

	log.Println("[Main] ========================================")
	log.Printf("[Main] FastAGI escuchando en %s", cfg.FastAGI.Address())
	log.Printf("[Main] API REST escuchando en %s", cfg.API.Address())
	log.Println("[Main] Servicio iniciado correctamente")
	log.Println("[Main] Presiona Ctrl+C para detener")
	log.Println("[Main] ========================================")

	// Esperar señal de terminación
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("[Main] Deteniendo servicio...")
	repo.Close()
}

// cmdHandlers lista los scripts que el daemon sabe atender
func cmdHandlers() {
	dispatcher := agid.NewDispatcher(nil, agid.NewRegistry(), nil)
	scripts := dispatcher.Scripts()
	sort.Strings(scripts)

	fmt.Println("Scripts AGI registrados:")
	for _, name := range scripts {
		fmt.Printf("  agi://<host>/%s\n", name)
	}
}

// cmdStatus muestra el estado del servicio
func cmdStatus() {
	fmt.Println("Agid Service Status")
	fmt.Println("===================")
	fmt.Println()
	fmt.Println("Para verificar el estado del servicio:")
	fmt.Println("  systemctl status agid")
	fmt.Println()
	fmt.Println("Para ver logs en tiempo real:")
	fmt.Println("  journalctl -u agid -f")
	fmt.Println()
	fmt.Println("Para verificar conectividad FastAGI:")
	fmt.Println("  nc -zv 127.0.0.1 4573")
	fmt.Println()
	fmt.Println("Para verificar API REST:")
	fmt.Println("  curl http://localhost:8080/health")
}
