// Command fxexport converts an effect library into a particle library XML
// file.
//
// Usage:
//
//	go run ./cmd/fxexport [flags]
//
// Flags:
//
//	--schema <path>     Parameter schema (XML or YAML). Defaults to the built-in schema.
//	--effects <path>    Effect library: authored YAML or a previously exported XML.
//	--settings <path>   Editor settings YAML.
//	--out <name>        Output file; ".xml" is appended when missing.
//	--library <name>    Library name written on export.
//	--all               Export every parameter, not only the changed ones.
//	--mode <mode>       Render mode written as ParticleSystem (All, GPU, CPU).
//	--check             Validate only, write nothing.
//	--remember          Load and store settings in the user's data directory.
//	--verbose           Enable verbose logging (default off).
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/decker502/fxlib/data"
	"github.com/decker502/fxlib/internal/schema"
	"github.com/decker502/fxlib/pkg/config"
	"github.com/decker502/fxlib/pkg/editor"
	"github.com/decker502/fxlib/pkg/effect"
	"github.com/decker502/fxlib/pkg/embedded"
)

const appName = "fxlib"

type options struct {
	schemaPath   string
	effectsPath  string
	settingsPath string
	out          string
	library      string
	all          bool
	mode         string
	check        bool
	remember     bool
	verbose      bool

	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{set: make(map[string]bool)}
	fs := flag.NewFlagSet("fxexport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.schemaPath, "schema", "", "Parameter schema file (default: built-in schema)")
	fs.StringVar(&o.effectsPath, "effects", data.SampleLibraryPath, "Effect library (YAML or exported XML)")
	fs.StringVar(&o.settingsPath, "settings", "", "Editor settings YAML")
	fs.StringVar(&o.out, "out", "", "Output file (default: <library>.xml)")
	fs.StringVar(&o.library, "library", "", "Library name written on export")
	fs.BoolVar(&o.all, "all", false, "Export every parameter, not only the changed ones")
	fs.StringVar(&o.mode, "mode", "", "Render mode written as ParticleSystem")
	fs.BoolVar(&o.check, "check", false, "Validate only, write nothing")
	fs.BoolVar(&o.remember, "remember", false, "Load and store settings in the user data directory")
	fs.BoolVar(&o.verbose, "verbose", false, "Enable verbose logging (default off)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// loadSettings 选择设置来源：指定文件、已保存的用户设置或默认设置
// 命令行参数优先于所有来源
func loadSettings(o *options) (*config.EditorSettings, *config.SettingsManager, error) {
	var settings *config.EditorSettings
	var manager *config.SettingsManager

	switch {
	case o.settingsPath != "":
		s, err := config.LoadSettingsFile(o.settingsPath)
		if err != nil {
			return nil, nil, err
		}
		settings = s
	case o.remember:
		manager = config.OpenSettingsManager(appName)
		settings = manager.GetSettings()
	default:
		settings = config.DefaultSettings()
	}

	if o.set["all"] {
		settings.ExportAllParameters = o.all
	}
	if o.mode != "" {
		settings.RenderMode = o.mode
	}
	if o.schemaPath != "" {
		settings.SchemaPath = o.schemaPath
	}
	return settings, manager, nil
}

func loadRegistry(path string) (*schema.Registry, error) {
	raw, origin, err := embedded.Resolve(path)
	if err != nil {
		return nil, err
	}
	reg := schema.NewRegistry()
	src := schema.BytesSource{Label: path, Data: raw, Format: schema.FormatForPath(path)}
	if _, err := reg.LoadErr(src); err != nil {
		return nil, err
	}
	log.Printf("Loaded schema %s (%s), %d parameters", path, origin, len(reg.Definitions()))
	return reg, nil
}

func loadEffects(s *editor.Session, path string) (*effect.Library, error) {
	raw, origin, err := embedded.Resolve(path)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded effects %s (%s)", path, origin)
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return s.Exporter().ImportLibrary(raw)
	}
	return effect.LoadLibraryYAML(raw)
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if !o.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(stderr)
	}

	embedded.Init(data.FS())

	settings, manager, err := loadSettings(o)
	if err != nil {
		return err
	}

	reg, err := loadRegistry(settings.SchemaPath)
	if err != nil {
		return err
	}

	session := editor.NewSession(reg, settings)
	lib, err := loadEffects(session, o.effectsPath)
	if err != nil {
		return err
	}
	session.LoadLibrary(lib)
	if o.library != "" {
		session.SetLibraryName(o.library)
	}

	warnings := session.Validate()
	for _, w := range warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
	if o.check {
		fmt.Fprintf(stdout, "%d effects, %d warnings\n", len(effect.Flatten(session.Effects())), len(warnings))
		return nil
	}

	out := o.out
	if out == "" {
		out = session.LibraryName()
	}
	path, err := session.ExportFile(out)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d effects)\n", path, len(effect.Flatten(session.Effects())))

	if manager != nil {
		manager.SetLastExportPath(path)
		if err := manager.Save(); err != nil {
			fmt.Fprintf(stderr, "warning: %v\n", err)
		}
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "fxexport: %v\n", err)
		os.Exit(1)
	}
}
