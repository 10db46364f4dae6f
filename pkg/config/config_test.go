package config

import (
	"os"
	"path/filepath"
	"testing"
)

type appConfig struct {
	Name string `split_words:"true"`
	Addr string `split_words:"true" default:":8000"`
}

// Environment mutation keeps these tests serial.

func TestNewReadsExplicitEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.env")
	if err := os.WriteFile(path, []byte("TESTAPP_NAME=jarvis\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	SetEnvFile(path)
	t.Cleanup(func() {
		SetEnvFile("")
		os.Unsetenv("TESTAPP_NAME")
	})

	conf, err := New[appConfig]("TESTAPP")
	if err != nil {
		t.Fatal(err)
	}
	if conf.Name != "jarvis" {
		t.Fatalf("Name = %q, want %q", conf.Name, "jarvis")
	}
	if conf.Addr != ":8000" {
		t.Fatalf("Addr = %q, want default", conf.Addr)
	}
}

func TestNewMissingExplicitEnvFileFails(t *testing.T) {
	SetEnvFile(filepath.Join(t.TempDir(), "absent.env"))
	t.Cleanup(func() { SetEnvFile("") })

	if _, err := New[appConfig]("TESTAPP"); err == nil {
		t.Fatal("want error for a missing explicit env file")
	}
}

func TestNewWithoutEnvFileUsesEnvironment(t *testing.T) {
	SetEnvFile("")
	os.Setenv("TESTAPP2_NAME", "from-env")
	t.Cleanup(func() { os.Unsetenv("TESTAPP2_NAME") })

	conf, err := New[appConfig]("TESTAPP2")
	if err != nil {
		t.Fatal(err)
	}
	if conf.Name != "from-env" {
		t.Fatalf("Name = %q, want %q", conf.Name, "from-env")
	}
}
