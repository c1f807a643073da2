// schemagen экспортирует JSON-схемы протокола коллабораторов.
// Схемы потребляют внешние подсистемы (рендер, аудио) для валидации
// и инспекции событий без импорта Go-типов.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "output directory for protocol schemas")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	targets := map[string]interface{}{
		"core_event.json":      api.CoreEvent{},
		"client_command.json":  api.ClientCommand{},
		"move.json":            api.MovePayload{},
		"listener.json":        api.ListenerPayload{},
		"cleanse.json":         api.CleansePayload{},
		"source.json":          api.SourcePayload{},
		"narrative.json":       api.NarrativePayload{},
		"companion_state.json": api.CompanionStatePayload{},
	}

	for name, typ := range targets {
		schema := reflector.ReflectFromType(reflect.TypeOf(typ))
		if schema == nil {
			fmt.Fprintf(os.Stderr, "reflect %s: nil schema\n", name)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal %s: %v\n", name, err)
			os.Exit(1)
		}
		data = append(data, '\n')

		if err := os.WriteFile(filepath.Join(outDir, name), data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", name, err)
			os.Exit(1)
		}
	}
}
