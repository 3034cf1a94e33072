// File: lixenwraith/argconfig/doc.go

// Package argconfig merges command-line arguments with a sectioned configuration
// file (TOML, INI, YAML or JSON) into one namespace of resolved values.
//
// Each option is declared once. Its names decide where it may be read from:
//   - "-o", "--option": command-line flags
//   - "section:key": the key in the given section of the configuration file
//   - any other name: a positional command-line argument
//
// Quick Start:
//
//	p := argconfig.New("app.conf", argconfig.WithConfigFlag("-c", "--config"))
//	err := p.Extend(
//	    argconfig.Declare("server:port", "-p", "--port").WithType(argconfig.Int).WithDefault(8080),
//	    argconfig.Declare("server:name").WithDefault("localhost"),
//	    argconfig.Declare("input").WithHelp("file to process"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ns, err := p.Parse(os.Args[1:])
//	if err != nil {
//	    log.Fatal(err)
//	}
//	port, _ := ns.Int("port")
//	name, _ := ns.String("server_name")
//
// Precedence (highest to lowest):
//  1. Command-line arguments (--port 9090)
//  2. Environment variables, when enabled with WithEnvPrefix (APP_SERVER_PORT=9090)
//  3. Configuration file ([server] port = 9090)
//  4. Declared defaults
//
// A missing configuration file is treated as empty. A missing section is treated as a
// missing key. Values from the file are converted with the option's Coercer, and a
// conversion failure aborts the parse with a CoercionError naming section, key and value.
package argconfig
