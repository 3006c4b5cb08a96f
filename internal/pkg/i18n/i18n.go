package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"

	"gopkg.in/yaml.v3"
)

const catalogueFile = "notifications.yaml"

type Translations map[string]string

//go:embed locales
var embedded embed.FS

var (
	locales = make(map[string]Translations)
	mu      sync.RWMutex
)

// LoadDefaults loads the catalogues compiled into the binary.
func LoadDefaults() error {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return err
	}
	return load(sub)
}

// LoadTranslations loads <localePath>/<locale>/notifications.yaml for every
// locale directory, replacing catalogues with the same name.
func LoadTranslations(localePath string) error {
	return load(os.DirFS(localePath))
}

func load(fsys fs.FS) error {
	mu.Lock()
	defer mu.Unlock()

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			locale := entry.Name()
			filePath := path.Join(locale, catalogueFile)

			data, err := fs.ReadFile(fsys, filePath)
			if err != nil {
				continue
			}

			var config struct {
				Notifications Translations `yaml:"NOTIFICATIONS"`
			}

			if err := yaml.Unmarshal(data, &config); err != nil {
				return fmt.Errorf("failed to parse %s: %w", filePath, err)
			}

			locales[locale] = config.Notifications
		}
	}

	return nil
}

func Translate(locale, key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if trans, ok := locales[locale]; ok {
		if val, ok := trans[key]; ok {
			return val
		}
	}

	if locale != "en" {
		if trans, ok := locales["en"]; ok {
			if val, ok := trans[key]; ok {
				return val
			}
		}
	}

	return key
}

// Locales lists the loaded locale names.
func Locales() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(locales))
	for name := range locales {
		names = append(names, name)
	}
	return names
}
