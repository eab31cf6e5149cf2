// Command javavm boots a guest JVM through the shim, exercises thread
// attachment from worker threads, lists the VMs visible to native
// callers and destroys the VM.
//
//	javavm -home /opt/graalvm -threads 4 -- -Xmx256m
//
// Arguments after the flags are passed to the guest as JVM options.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/mokapot/config"
	"github.com/wippyai/mokapot/errors"
	"github.com/wippyai/mokapot/javavm"
	"github.com/wippyai/mokapot/jni"
	"github.com/wippyai/mokapot/loader"
	"github.com/wippyai/mokapot/registry"
)

type options struct {
	threads  int
	daemon   bool
	polyglot bool
	discover int
	jvmArgs  []string
}

func main() {
	cfg := config.New()
	fs := flag.NewFlagSet("javavm", flag.ExitOnError)
	cfg.RegisterFlags(fs)

	var o options
	fs.IntVar(&o.threads, "threads", 2, "Worker threads to attach, check and detach")
	fs.BoolVar(&o.daemon, "daemon", false, "Attach worker threads as daemons")
	fs.BoolVar(&o.polyglot, "polyglot", false, "Boot the polyglot image (passes --polyglot)")
	fs.IntVar(&o.discover, "discover", 8, "Buffer size for GetCreatedJavaVMs")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: javavm [flags] [-- jvm options...]")
		fs.PrintDefaults()
	}

	if err := config.Parse(fs, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	o.jvmArgs = fs.Args()

	log, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()
	loader.SetLogger(log)
	javavm.SetLogger(log)

	home := cfg.Home
	if home == "" {
		home, err = executableHome()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	l := loader.New(loader.NativeOpener, loader.WithHome(home))
	if err := run(l, cfg, o, log, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// executableHome assumes the launcher sits in <home>/bin.
func executableHome() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(filepath.Dir(exe)), nil
}

func run(l javavm.LibraryLoader, cfg *config.Config, o options, log *zap.Logger, out io.Writer) error {
	if o.threads < 0 || o.discover < 1 {
		return fmt.Errorf("invalid options: threads=%d discover=%d", o.threads, o.discover)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	shim := javavm.NewShim(l,
		javavm.WithRegistry(registry.New[javavm.Wrapper](cfg.RegistryOptions()...)),
		javavm.WithLogger(log),
		javavm.WithIsolateParams(cfg.IsolateParams()))

	args := o.jvmArgs
	if o.polyglot {
		args = append(args, jni.PolyglotOption)
	}

	vm, env, err := shim.CreateJavaVM(jni.NewInitArgs(jni.Version21, false, args...))
	if err != nil {
		return fmt.Errorf("create JavaVM (%s): %w", errors.Code(err), err)
	}
	fmt.Fprintf(out, "JavaVM %s\n", vm.ID())
	fmt.Fprintf(out, "  mode:    %s\n", vm.Mode())
	fmt.Fprintf(out, "  isolate: %#x\n", vm.Isolate())
	fmt.Fprintf(out, "  env:     %#x\n", env)

	destroyed := false
	defer func() {
		if !destroyed {
			if err := vm.DestroyJavaVM(); err != nil {
				log.Warn("destroy after failure", zap.Error(err))
			}
		}
	}()

	var g errgroup.Group
	for i := 0; i < o.threads; i++ {
		name := fmt.Sprintf("worker-%d", i)
		g.Go(func() error {
			return worker(vm, name, o.daemon)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nAttached and detached %d threads\n", o.threads)

	buf := make([]javavm.JavaVM, o.discover)
	n, err := shim.GetCreatedJavaVMs(buf)
	if err != nil {
		return fmt.Errorf("GetCreatedJavaVMs (%s): %w", errors.Code(err), err)
	}
	fmt.Fprintf(out, "\nCreated JavaVMs: %d\n", n)
	for _, v := range buf[:n] {
		if w, ok := v.(*javavm.Wrapper); ok {
			fmt.Fprintf(out, "  %s %s\n", v.Kind(), w.ID())
			continue
		}
		fmt.Fprintf(out, "  %s\n", v.Kind())
	}

	destroyed = true
	if err := vm.DestroyJavaVM(); err != nil {
		return fmt.Errorf("destroy JavaVM (%s): %w", errors.Code(err), err)
	}
	fmt.Fprintf(out, "\nJavaVM destroyed\n")
	return nil
}

// worker attaches its own OS thread, checks GetEnv and detaches.
func worker(vm *javavm.Wrapper, name string, daemon bool) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	attach := vm.AttachCurrentThread
	if daemon {
		attach = vm.AttachCurrentThreadAsDaemon
	}
	env, err := attach(&jni.AttachArgs{Version: jni.Version21, Name: name})
	if err != nil {
		return fmt.Errorf("%s: attach (%s): %w", name, errors.Code(err), err)
	}

	got, err := vm.GetEnv(jni.Version21)
	if err == nil && got != env {
		err = fmt.Errorf("%s: GetEnv returned %#x, attach returned %#x", name, got, env)
	}
	if derr := vm.DetachCurrentThread(); derr != nil {
		err = errors.Append(err, fmt.Errorf("%s: detach: %w", name, derr))
	}
	return err
}
