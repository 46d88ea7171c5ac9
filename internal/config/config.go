package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListURL             = "https://d23n8qhlhvu9hv.cloudfront.net"
	DefaultAssetURL            = "https://d1tyw9tv8qplvm.cloudfront.net"
	DefaultImagesPrefix        = "validated/images/"
	DefaultMetadataPrefix      = "validated/metadata/"
	DefaultRequestTimeout      = 30 * time.Second
	DefaultMetadataConcurrency = 16
	DefaultPageSize            = 12
	DefaultPort                = "8888"
)

// Config holds the bucket endpoints and tuning knobs for the gallery
type Config struct {
	// ListURL serves the ListObjectsV2 XML listing
	ListURL string `yaml:"list_url"`
	// AssetURL serves images and sidecar metadata
	AssetURL            string        `yaml:"asset_url"`
	ImagesPrefix        string        `yaml:"images_prefix"`
	MetadataPrefix      string        `yaml:"metadata_prefix"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
	MetadataConcurrency int           `yaml:"metadata_concurrency"`
	PageSize            int           `yaml:"page_size"`
	Port                string        `yaml:"port"`
}

// Default returns the production CloudFront configuration
func Default() *Config {
	return &Config{
		ListURL:             DefaultListURL,
		AssetURL:            DefaultAssetURL,
		ImagesPrefix:        DefaultImagesPrefix,
		MetadataPrefix:      DefaultMetadataPrefix,
		RequestTimeout:      DefaultRequestTimeout,
		MetadataConcurrency: DefaultMetadataConcurrency,
		PageSize:            DefaultPageSize,
		Port:                DefaultPort,
	}
}

// Load starts from the defaults, applies the YAML file at path (if any)
// and then BUCKSHOT_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	stringVars := map[string]*string{
		"BUCKSHOT_LIST_URL":        &c.ListURL,
		"BUCKSHOT_ASSET_URL":       &c.AssetURL,
		"BUCKSHOT_IMAGES_PREFIX":   &c.ImagesPrefix,
		"BUCKSHOT_METADATA_PREFIX": &c.MetadataPrefix,
		"BUCKSHOT_PORT":            &c.Port,
	}
	for name, dst := range stringVars {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("BUCKSHOT_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BUCKSHOT_REQUEST_TIMEOUT %q: %w", v, err)
		}
		c.RequestTimeout = d
	}

	intVars := map[string]*int{
		"BUCKSHOT_METADATA_CONCURRENCY": &c.MetadataConcurrency,
		"BUCKSHOT_PAGE_SIZE":            &c.PageSize,
	}
	for name, dst := range intVars {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		*dst = n
	}

	return nil
}

// Validate rejects configurations the catalog client cannot work with
func (c *Config) Validate() error {
	var errs []error

	for name, raw := range map[string]string{"list_url": c.ListURL, "asset_url": c.AssetURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", name, raw))
		}
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive"))
	}
	if c.MetadataConcurrency < 1 {
		errs = append(errs, fmt.Errorf("metadata_concurrency must be at least 1"))
	}
	if c.PageSize < 1 {
		errs = append(errs, fmt.Errorf("page_size must be at least 1"))
	}

	return errors.Join(errs...)
}
