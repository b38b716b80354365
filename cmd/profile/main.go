//go:build profiling
// +build profiling

package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/felixge/fgprof"
	"github.com/grafana/pyroscope-go"

	"github.com/meigma/passbook"
	"github.com/meigma/passbook/internal/testutil/testpki"
)

type profileKind string

const (
	profileCPU   profileKind = "cpu"
	profileFG    profileKind = "fgprof"
	profileTrace profileKind = "trace"
	profileNone  profileKind = "none"
)

const (
	modeCreate = "create"
	modeVerify = "verify"
	modeBoth   = "both"
)

func main() {
	var (
		mode        = flag.String("mode", modeBoth, "mode: create, verify, or both")
		assets      = flag.Int("assets", 8, "number of synthetic asset files")
		assetSize   = flag.String("asset-size", "256KiB", "size of each synthetic asset")
		assetDir    = flag.String("asset-dir", "", "directory of real assets (overrides --assets)")
		digestAlg   = flag.String("digest", "sha1", "manifest digest: sha1, sha256, sha512")
		compression = flag.String("compression", "deflate", "member compression: deflate, best, store")
		profile     = flag.String("profile", "cpu", "profile type: cpu, fgprof, trace, none")
		outDir      = flag.String("out", "profiles", "output directory for profiles")
		label       = flag.String("label", "", "label suffix for profile files")
		repeat      = flag.Int("repeat", 20, "number of iterations")
		logLevel    = flag.String("log-level", "", "log level: debug, info, warn, error")
		timeout     = flag.Duration("timeout", 15*time.Minute, "overall timeout")
		pyroAddr    = flag.String("pyroscope", "", "Pyroscope server URL (enables streaming, disables local profiles)")
	)
	flag.Parse()

	runID := time.Now().UTC().Format("20060102T150405Z")

	modeValue := strings.ToLower(*mode)
	if modeValue != modeCreate && modeValue != modeVerify && modeValue != modeBoth {
		log.Fatalf("invalid mode %q (expected %s, %s, or %s)", *mode, modeCreate, modeVerify, modeBoth)
	}

	profileKindValue := profileKind(strings.ToLower(*profile))
	if !isValidProfile(profileKindValue) {
		log.Fatalf("invalid profile %q (expected cpu, fgprof, trace, none)", *profile)
	}
	if *repeat < 1 {
		log.Fatalf("repeat must be >= 1")
	}

	size, err := humanize.ParseBytes(*assetSize)
	if err != nil {
		log.Fatalf("parse asset size: %v", err)
	}

	// When Pyroscope is enabled, stream profiles instead of writing locally
	var pyroProfiler *pyroscope.Profiler
	if *pyroAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "passbook-profile",
			ServerAddress:   *pyroAddr,
			// User: instance ID from Grafana Cloud, Password: API token
			BasicAuthUser:     os.Getenv("PYROSCOPE_BASIC_AUTH_USER"),
			BasicAuthPassword: os.Getenv("PYROSCOPE_BASIC_AUTH_PASSWORD"),
			UploadRate:        5 * time.Second,
			Logger:            pyroscope.StandardLogger,
			Tags: map[string]string{
				"mode":    modeValue,
				"digest":  *digestAlg,
				"git_sha": os.Getenv("GITHUB_SHA"),
				"run_id":  runID,
			},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("start pyroscope: %v", err)
		}
		pyroProfiler = profiler
		log.Printf("streaming profiles to %s", *pyroAddr)
	} else if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create profile output dir: %v", err)
	}

	labelParts := []string{modeValue, *digestAlg}
	if *label != "" {
		labelParts = append(labelParts, sanitizeLabel(*label))
	}
	labelParts = append(labelParts, runID)
	labelValue := strings.Join(labelParts, "_")

	// Fixture setup stays outside the profiled region.
	pki, err := testpki.NewWithCommonName("pass.com.example.profile")
	if err != nil {
		log.Fatalf("generate signing identity: %v", err)
	}
	creds := passbook.Credentials{
		CertificatePEM: pki.CertPEM(),
		KeyPEM:         pki.KeyPEM(),
		ChainPEM:       pki.CAPEM(),
	}

	p, err := newPass(*assetDir, *assets, size)
	if err != nil {
		log.Fatalf("build pass: %v", err)
	}

	comp, err := passbook.ParseCompression(*compression)
	if err != nil {
		log.Fatalf("parse compression: %v", err)
	}
	builderOpts := []passbook.BuilderOption{
		passbook.WithDigestAlgorithm(*digestAlg),
		passbook.WithCompression(comp),
	}
	if *logLevel != "" {
		level, err := parseLogLevel(*logLevel)
		if err != nil {
			log.Fatalf("parse log level: %v", err)
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		builderOpts = append(builderOpts, passbook.WithLogger(logger))
	}
	builder, err := passbook.NewBuilder(builderOpts...)
	if err != nil {
		log.Fatalf("create builder: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Verify-only runs profile verification of one prebuilt bundle.
	var bundle []byte
	if modeValue == modeVerify {
		b, err := builder.Create(ctx, p, creds)
		if err != nil {
			log.Fatalf("create: %v", err)
		}
		bundle = b.Archive
	}

	// Only start local profiling when not streaming to Pyroscope
	var stopProfile func() error
	if *pyroAddr == "" {
		stopProfile, err = startProfile(profileKindValue, *outDir, labelValue)
		if err != nil {
			log.Fatalf("start profile: %v", err)
		}
	}

	var createTotal, verifyTotal time.Duration
	for i := range *repeat {
		if modeValue == modeCreate || modeValue == modeBoth {
			start := time.Now()
			b, err := builder.Create(ctx, p, creds)
			if err != nil {
				log.Fatalf("create (iteration %d): %v", i+1, err)
			}
			createTotal += time.Since(start)
			bundle = b.Archive
		}

		if modeValue == modeVerify || modeValue == modeBoth {
			start := time.Now()
			if _, err := builder.Verify(ctx, bundle, passbook.WithRoots(pki.Roots())); err != nil {
				log.Fatalf("verify (iteration %d): %v", i+1, err)
			}
			verifyTotal += time.Since(start)
		}
	}

	//nolint:gosec // G115: bundle length is non-negative
	log.Printf("bundle: %s, %d assets", humanize.IBytes(uint64(len(bundle))), len(p.Files()))
	if createTotal > 0 {
		log.Printf("create: %s total, %s per bundle", createTotal, createTotal/time.Duration(*repeat))
	}
	if verifyTotal > 0 {
		log.Printf("verify: %s total, %s per bundle", verifyTotal, verifyTotal/time.Duration(*repeat))
	}

	// Stop profiling - either Pyroscope or local
	if pyroProfiler != nil {
		if err := pyroProfiler.Stop(); err != nil {
			log.Fatalf("stop pyroscope: %v", err)
		}
		log.Printf("pyroscope profiling stopped")
		return
	}
	if stopErr := stopProfile(); stopErr != nil {
		log.Fatalf("stop profile: %v", stopErr)
	}
	if err := writeHeapProfile(*outDir, labelValue); err != nil {
		log.Fatalf("write heap profile: %v", err)
	}
	if err := writeAllocsProfile(*outDir, labelValue); err != nil {
		log.Fatalf("write allocs profile: %v", err)
	}
}

// newPass returns a generic pass carrying either the files in dir or n
// random assets of size bytes each.
func newPass(dir string, n int, size uint64) (*passbook.Pass, error) {
	style := passbook.NewGeneric()
	style.AddPrimaryField("member", "Profile Run", "Member")
	style.AddSecondaryField("points", 1200, "Points")

	p := passbook.NewPass(style, passbook.Identity{
		TeamIdentifier:     "PROFILE",
		PassTypeIdentifier: "pass.com.example.profile",
		OrganizationName:   "Profiling",
		SerialNumber:       passbook.NewSerialNumber(),
		Description:        "Profiling pass",
	})

	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		return p, p.AddFS(os.DirFS(abs))
	}

	for i := range n {
		//nolint:gosec // G115: asset size comes from a flag
		if err := p.AddFile(fmt.Sprintf("asset%03d.png", i), io.LimitReader(rand.Reader, int64(size))); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func isValidProfile(kind profileKind) bool {
	switch kind {
	case profileCPU, profileFG, profileTrace, profileNone:
		return true
	default:
		return false
	}
}

func startProfile(kind profileKind, outDir, label string) (func() error, error) {
	switch kind {
	case profileCPU:
		path := filepath.Join(outDir, "cpu_"+label+".pprof")
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		return func() error {
			pprof.StopCPUProfile()
			return f.Close()
		}, nil
	case profileFG:
		path := filepath.Join(outDir, "fgprof_"+label+".pprof")
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		stop := fgprof.Start(f, fgprof.FormatPprof)
		return func() error {
			stopErr := stop()
			closeErr := f.Close()
			return errors.Join(stopErr, closeErr)
		}, nil
	case profileTrace:
		path := filepath.Join(outDir, "trace_"+label+".out")
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		return func() error {
			trace.Stop()
			return f.Close()
		}, nil
	case profileNone:
		return func() error { return nil }, nil
	default:
		return nil, fmt.Errorf("unknown profile type: %s", kind)
	}
}

func writeHeapProfile(outDir, label string) error {
	path := filepath.Join(outDir, "heap_"+label+".pprof")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}

func writeAllocsProfile(outDir, label string) error {
	path := filepath.Join(outDir, "allocs_"+label+".pprof")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return pprof.Lookup("allocs").WriteTo(f, 0)
}

func sanitizeLabel(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, value)
}

func parseLogLevel(value string) (slog.Leveler, error) {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return nil, fmt.Errorf("unknown level %q", value)
	}
}
