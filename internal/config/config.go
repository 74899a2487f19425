package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config estructura principal de configuración
type Config struct {
	FastAGI  FastAGIConfig  `yaml:"fastagi"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

type FastAGIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type APIConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	EnableCORS bool   `yaml:"enable_cors"`
	JWTSecret  string `yaml:"jwt_secret"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load carga la configuración desde archivo YAML
func Load(path string) (*Config, error) {
	// Valores por defecto (Asterisk habla FastAGI al puerto 4573)
	cfg := Config{
		FastAGI: FastAGIConfig{Host: "127.0.0.1", Port: 4573},
		API:     APIConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         3306,
			Username:     "asterisk",
			Database:     "asterisk",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error leyendo archivo de configuración: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parseando YAML: %w", err)
	}

	// Permitir sobrescribir con variables de entorno
	overrideWithEnv(&cfg)

	return &cfg, nil
}

// overrideWithEnv permite sobrescribir configuración con variables de entorno
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("AGID_DB_USERNAME"); v != "" {
		cfg.Database.Username = v
	}
	if v := os.Getenv("AGID_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("AGID_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("AGID_DB_DATABASE"); v != "" {
		cfg.Database.Database = v
	}
	if v := os.Getenv("AGID_JWT_SECRET"); v != "" {
		cfg.API.JWTSecret = v
	}
}

// Address devuelve la dirección completa del servidor FastAGI
func (f FastAGIConfig) Address() string {
	return fmt.Sprintf("%s:%d", f.Host, f.Port)
}

// Address devuelve la dirección completa del servidor API
func (a APIConfig) Address() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// DSN devuelve el Data Source Name para MySQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}
