// Package config loads judgecore's on-disk defaults: resource limits, listen
// addresses, credential paths, and the platform/object-storage endpoints the
// service polls and syncs against. Values are read from a TOML file by Load.
// The commands in cmd/ take their settings from their own flags and do not
// call Load.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/judgecore/judgecore/internal/jcerr"
	"github.com/judgecore/judgecore/internal/rlimit"
)

// RlimitPair mirrors rlimit.Pair with TOML-friendly field names.
type RlimitPair struct {
	Soft uint64 `toml:"soft"`
	Hard uint64 `toml:"hard"`
}

func (p *RlimitPair) toPair() *rlimit.Pair {
	if p == nil {
		return nil
	}
	return &rlimit.Pair{Soft: p.Soft, Hard: p.Hard}
}

// DefaultLimits is the [limits] table of the config file, giving the default
// ResourceLimitConfig applied when a problem package has no per-problem
// override.
type DefaultLimits struct {
	AddressSpace *RlimitPair `toml:"address_space"`
	Stack        *RlimitPair `toml:"stack"`
	CPUSeconds   *RlimitPair `toml:"cpu_seconds"`
	FileSize     *RlimitPair `toml:"file_size"`
	NProc        *RlimitPair `toml:"nproc"`
}

// ToRlimitConfig converts the TOML representation into rlimit.Config.
func (d DefaultLimits) ToRlimitConfig() rlimit.Config {
	return rlimit.Config{
		AddressSpace: d.AddressSpace.toPair(),
		Stack:        d.Stack.toPair(),
		CPUSeconds:   d.CPUSeconds.toPair(),
		FileSize:     d.FileSize.toPair(),
		NProc:        d.NProc.toPair(),
	}
}

// JudgeServiceConfig is the root of judgecore's TOML config file.
type JudgeServiceConfig struct {
	Limits DefaultLimits `toml:"limits"`

	GRPC struct {
		ListenAddr string `toml:"listen_addr"`
		CertFile   string `toml:"cert_file"`
		KeyFile    string `toml:"key_file"`
		CAFile     string `toml:"ca_file"`
	} `toml:"grpc"`

	HTTP struct {
		ListenAddr string `toml:"listen_addr"`
	} `toml:"http"`

	WorkDirRoot string `toml:"work_dir_root"`

	Platform struct {
		BaseURL      string `toml:"base_url"`
		PollInterval string `toml:"poll_interval"`
		APIToken     string `toml:"api_token"`
	} `toml:"platform"`

	ObjectStorage struct {
		Endpoint  string `toml:"endpoint"`
		Bucket    string `toml:"bucket"`
		AccessKey string `toml:"access_key"`
		SecretKey string `toml:"secret_key"`
		UseSSL    bool   `toml:"use_ssl"`
	} `toml:"object_storage"`
}

// Load decodes a TOML config file at path. A missing file is not an error;
// the zero-valued JudgeServiceConfig is returned so callers can still layer
// flags on top of it.
func Load(path string) (JudgeServiceConfig, error) {
	var cfg JudgeServiceConfig
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, jcerr.New(jcerr.Io, err)
	}
	return cfg, nil
}
