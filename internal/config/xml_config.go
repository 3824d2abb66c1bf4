// Package config provides XML-based configuration for the attendance dashboard.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Aggregation engines.
const (
	EngineMemory = "memory"
	EngineDuckDB = "duckdb"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"AttendanceDashboard"`

	Server    ServerConfig    `xml:"Server"`
	Storage   StorageConfig   `xml:"Storage"`
	Ingestion IngestionConfig `xml:"Ingestion"`
	Calendar  CalendarConfig  `xml:"Calendar"`
	Advanced  AdvancedConfig  `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory         string `xml:"DataDirectory"`
	UploadsDirectory      string `xml:"UploadsDirectory"`
	TableFile             string `xml:"TableFile"`
	ArchiveUploads        bool   `xml:"ArchiveUploads"`
	AllowDocumentDeletion bool   `xml:"AllowDocumentDeletion"`
}

// IngestionConfig controls how uploaded spreadsheets are read
type IngestionConfig struct {
	HeaderScanRows   int    `xml:"HeaderScanRows"`
	AllowedFileTypes string `xml:"AllowedFileTypes"`
}

// CalendarConfig selects the working-day calendar
type CalendarConfig struct {
	Country      string `xml:"Country"`
	HolidaysFile string `xml:"HolidaysFile"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	LogFormat            string `xml:"LogFormat"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	AggregationEngine    string `xml:"AggregationEngine"`
	DuckDBThreads        int    `xml:"DuckDBThreads"`
	DuckDBMemoryLimit    string `xml:"DuckDBMemoryLimit"`
	EnableMetrics        bool   `xml:"EnableMetrics"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "64M",
		},
		Storage: StorageConfig{
			DataDirectory:         "./data",
			UploadsDirectory:      "./data/uploads",
			TableFile:             "attendance_data.xlsx",
			ArchiveUploads:        true,
			AllowDocumentDeletion: true,
		},
		Ingestion: IngestionConfig{
			HeaderScanRows:   5,
			AllowedFileTypes: ".xlsx,.xlsm,.xls,.csv",
		},
		Calendar: CalendarConfig{
			Country: "RU",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			LogFormat:            "text",
			EnableRequestLogging: true,
			AggregationEngine:    EngineMemory,
			DuckDBThreads:        2,
			DuckDBMemoryLimit:    "512MB",
			EnableMetrics:        true,
		},
	}
}

// LoadConfig loads configuration from XML file, writing the defaults first
// when the file does not exist.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Attendance Dashboard Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects values the server cannot start with.
func (c *AppConfig) Validate() error {
	switch c.Advanced.AggregationEngine {
	case EngineMemory, EngineDuckDB:
	default:
		return fmt.Errorf("unknown aggregation engine %q", c.Advanced.AggregationEngine)
	}
	if c.Ingestion.HeaderScanRows < 1 {
		return fmt.Errorf("HeaderScanRows must be positive, got %d", c.Ingestion.HeaderScanRows)
	}
	if c.Storage.TableFile == "" {
		return fmt.Errorf("TableFile must be set")
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.UploadsDirectory = filepath.Join(dataDir, "uploads")
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}

	if engine := os.Getenv("AGGREGATION_ENGINE"); engine != "" {
		c.Advanced.AggregationEngine = strings.ToLower(engine)
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.UploadsDirectory) {
		c.Storage.UploadsDirectory = filepath.Join(configDir, c.Storage.UploadsDirectory)
	}
	if c.Calendar.HolidaysFile != "" && !filepath.IsAbs(c.Calendar.HolidaysFile) {
		c.Calendar.HolidaysFile = filepath.Join(configDir, c.Calendar.HolidaysFile)
	}
}

// GetTablePath returns the absolute path of the persisted attendance table
func (c *AppConfig) GetTablePath() string {
	if filepath.IsAbs(c.Storage.TableFile) {
		return c.Storage.TableFile
	}
	return filepath.Join(c.Storage.DataDirectory, c.Storage.TableFile)
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// GetAllowedFileTypes returns the lower-cased extensions accepted for upload
func (c *AppConfig) GetAllowedFileTypes() []string {
	var out []string
	for _, ext := range strings.Split(c.Ingestion.AllowedFileTypes, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
