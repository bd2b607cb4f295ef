package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/config"
	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/solast"
	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/soltype"
	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/wctx"
	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/web"
	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/wos"
	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/wslog"
	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/wtrace"

	"github.com/goccy/go-json"
	"github.com/kr/pretty"
)

func check(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

const usage = `usage:
	soltype [-v] parse [-dump] [-json] type-string...
	soltype [-v] check [-c config] [-j workers] [-strict] [-json] [-l addr] file...
	soltype -version
`

func main() {
	var (
		ctx     = context.Background()
		version bool
		verbose bool
	)
	flag.BoolVar(&version, "version", false, "version")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if version {
		fmt.Printf("v%s %s\n", Version, Commit)
		os.Exit(0)
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelInfo)
	if verbose {
		logLevel.Set(slog.LevelDebug)
	}
	lh := wslog.New(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	lh.RegisterContext(func(ctx context.Context) (string, any) {
		id := wctx.RunID(ctx)
		if id == "" {
			return "", nil
		}
		return "run", id[:8]
	})
	lh.RegisterContext(func(ctx context.Context) (string, any) {
		name := wctx.SrcName(ctx)
		if name == "" {
			return "", nil
		}
		return "src", name
	})
	lh.RegisterContext(func(ctx context.Context) (string, any) {
		d, ok := wctx.DeclOf(ctx)
		if !ok {
			return "", nil
		}
		return "decl", fmt.Sprintf("%s#%d", d.Name, d.ID)
	})
	lh.RegisterContext(func(ctx context.Context) (string, any) {
		v := wctx.Version(ctx)
		if v == "" {
			return "", nil
		}
		return "v", v
	})
	slog.SetDefault(slog.New(lh))
	ctx = wctx.WithVersion(ctx, Commit)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	switch args[0] {
	case "parse":
		os.Exit(parse(args[1:]))
	case "check":
		os.Exit(runCheck(ctx, args[1:]))
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func parse(args []string) int {
	var (
		fs      = flag.NewFlagSet("parse", flag.ExitOnError)
		dump    bool
		jsonOut bool
	)
	fs.BoolVar(&dump, "dump", false, "print the parsed value")
	fs.BoolVar(&jsonOut, "json", false, "print results as json")
	check(fs.Parse(args))

	var (
		code  int
		views []web.TypeView
	)
	for _, s := range fs.Args() {
		t, err := soltype.Parse(s)
		if err != nil {
			code = 1
		}
		switch {
		case jsonOut:
			views = append(views, web.View(s, t, err))
		case err != nil:
			fmt.Fprintf(os.Stderr, "%s\n", err)
		case dump:
			pretty.Printf("%# v\n", t)
		default:
			fmt.Println(t)
		}
	}
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		check(enc.Encode(views))
	}
	return code
}

func runCheck(ctx context.Context, args []string) int {
	var (
		fs      = flag.NewFlagSet("check", flag.ExitOnError)
		cfile   string
		workers int
		strict  bool
		jsonOut bool
		listen  string
	)
	fs.StringVar(&cfile, "c", "", "config file")
	fs.IntVar(&workers, "j", 0, "files scanned concurrently (default GOMAXPROCS)")
	fs.BoolVar(&strict, "strict", false, "report unknown type name nodes as failures")
	fs.BoolVar(&jsonOut, "json", false, "print the report as json")
	fs.StringVar(&listen, "l", "", "serve /parse, /build and /metrics on this address")
	check(fs.Parse(args))

	var conf config.Root
	if cfile != "" {
		var err error
		conf, err = config.Load(cfile)
		check(err)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "j":
			conf.Workers = wos.EnvInt(workers)
		case "strict":
			conf.Strict = strict
		case "json":
			conf.JSON = jsonOut
		case "l":
			conf.Listen = wos.EnvString(listen)
		}
	})
	conf.Files = append(conf.Files, fs.Args()...)
	check(config.ValidateFix(&conf))
	if len(conf.Files) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	tc := wtrace.ConfigFromEnv()
	tc.ServiceVersion = Commit
	shutdown, err := wtrace.Init(ctx, tc)
	check(err)
	defer shutdown(ctx)

	if conf.Listen != "" {
		wh := web.New()
		mux := http.NewServeMux()
		mux.HandleFunc("/parse", wh.Parse)
		mux.HandleFunc("/build", wh.Build)
		mux.HandleFunc("/metrics", wh.Prom)
		go func() {
			err := http.ListenAndServe(string(conf.Listen), log(verboseHTTP(), mux))
			slog.Error("http", "error", err)
		}()
	}

	r, err := solast.Scan(ctx, solast.Options{
		Workers: int(conf.Workers),
		Strict:  conf.Strict,
	}, conf.Files...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}
	if conf.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		check(enc.Encode(r))
	} else {
		for _, f := range r.Failures {
			fmt.Printf("%s:%d: %s\n", f.File, f.ID, f.Err)
		}
		t := r.Totals()
		fmt.Printf("files=%d nodes=%d types=%d decls=%d unknown=%d failures=%d\n",
			len(r.Files), t.Nodes, t.TypeStrings, t.Decls, t.Unknown, t.Failures)
	}
	if conf.Listen != "" {
		slog.InfoContext(ctx, "serving", "l", conf.Listen)
		select {}
	}
	if !r.OK() {
		return 1
	}
	return 0
}

func verboseHTTP() bool {
	return slog.Default().Enabled(context.Background(), slog.LevelDebug)
}

func log(v bool, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		h.ServeHTTP(w, r)
		if v {
			slog.Debug("", "e", time.Since(t0), "u", r.URL.Path)
		}
	})
}

// Set using: go build -ldflags="-X main.Version=XXX"
var (
	Version string
	Commit  = func() string {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return "ernobuildinfo"
		}
		var (
			revision = ""
			modified bool
		)
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				revision = s.Value[:min(4, len(s.Value))]
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
		if !modified {
			return revision
		}
		return revision + "-"
	}()
)
