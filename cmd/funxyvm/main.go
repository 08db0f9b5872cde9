// Command funxyvm is a minimal host for the execution engine: it
// loads an already-compiled Module from its wire format, runs one of
// its entry chunks, and reports the result and gas usage. It does not
// compile source — that front end lives outside this repository
// (spec.md §1) — so it only ever consumes bytecode produced by
// internal/gasm-style tooling or another compiler targeting the same
// wire format.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/xelis-go/funxyvm/internal/gconfig"
	"github.com/xelis-go/funxyvm/internal/gcontext"
	"github.com/xelis-go/funxyvm/internal/genv"
	"github.com/xelis-go/funxyvm/internal/gmodule"
	"github.com/xelis-go/funxyvm/internal/gstdlib"
	"github.com/xelis-go/funxyvm/internal/gstore"
	"github.com/xelis-go/funxyvm/internal/gvm"
	"github.com/xelis-go/funxyvm/internal/gwire"
)

var colorEnabled = detectColor()

func detectColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func colorize(code, s string) string {
	if !colorEnabled {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func main() {
	var (
		entryChunk = flag.Uint("entry", 0, "chunk id to invoke")
		gasLimit   = flag.Uint64("gas", 0, "gas limit for the invocation (0 uses the host config default)")
		configPath = flag.String("config", "", "path to a host config YAML file")
		cachePath  = flag.String("cache", "", "path to a content-addressed module cache (overrides the config file)")
		overrides  = flag.String("entries", "", "path to a YAML entry-overrides sidecar file")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <module.fxb>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	modulePath := flag.Arg(0)

	cfg := gconfig.DefaultHostConfig()
	if *configPath != "" {
		loaded, err := gconfig.LoadHostConfig(*configPath)
		if err != nil {
			fail(err)
		}
		cfg = loaded
	}
	if *cachePath != "" {
		cfg.CachePath = *cachePath
	}
	if *gasLimit != 0 {
		cfg.DefaultGasLimit = *gasLimit
	}

	mod, err := loadModule(modulePath, cfg)
	if err != nil {
		fail(err)
	}

	if *overrides != "" {
		data, err := os.ReadFile(*overrides)
		if err != nil {
			fail(fmt.Errorf("reading entry overrides %s: %w", *overrides, err))
		}
		ov, err := gwire.DecodeEntryOverrides(data)
		if err != nil {
			fail(fmt.Errorf("parsing entry overrides %s: %w", *overrides, err))
		}
		ov.Apply(mod)
	}

	chunkID := uint16(*entryChunk)
	if !mod.IsEntry(chunkID) {
		fail(fmt.Errorf("chunk %d is not a registered entry in %s", chunkID, modulePath))
	}

	b := genv.NewBuilder()
	gstdlib.Register(b)
	env := b.Build()

	vm := gvm.NewWithLimits(mod, env, cfg.Limits)
	ctx := gcontext.New(context.Background(), cfg.DefaultGasLimit)

	result, err := vm.Invoke(ctx, chunkID, nil)
	if err != nil {
		if cfg.TraceOnFailure {
			if chunk, ok := mod.Chunk(chunkID); ok {
				fmt.Fprintln(os.Stderr, gvm.Disassemble(chunk, fmt.Sprintf("chunk_%d", chunkID)))
			}
		}
		fmt.Fprintf(os.Stderr, "%s %v (trace %s)\n", colorize("31", "error:"), err, ctx.TraceID())
		fmt.Fprintf(os.Stderr, "gas used: %d/%d\n", ctx.GasUsed(), ctx.GasLimit())
		os.Exit(1)
	}

	if result != nil {
		fmt.Printf("%s %v\n", colorize("32", "result:"), result.AsRef().Prim)
	}
	fmt.Printf("gas used: %d/%d (trace %s)\n", ctx.GasUsed(), ctx.GasLimit(), ctx.TraceID())
}

func loadModule(path string, cfg gconfig.HostConfig) (*gmodule.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading module %s: %w", path, err)
	}

	if cfg.CachePath != "" {
		cache, err := gstore.Open(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("opening module cache %s: %w", cfg.CachePath, err)
		}
		defer cache.Close()

		hash := gstore.ContentHash(data)
		ctx := context.Background()
		if mod, ok, err := cache.Get(ctx, hash); err == nil && ok {
			return mod, nil
		}

		mod, err := gwire.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("decoding module %s: %w", path, err)
		}
		if err := cache.Put(ctx, hash, data); err != nil {
			return nil, fmt.Errorf("storing module %s in cache: %w", path, err)
		}
		return mod, nil
	}

	return gwire.Decode(data)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, colorize("31", "error:"), err)
	os.Exit(1)
}
