// Command shaderc is the thin driver binding package config, batch,
// and header together: discover template shaders under a configured
// directory, run the compile batch, and write the generated header to
// disk. The flag and watch-loop shape follows an fsnotify event/error
// channel discipline, generalized from a long-lived asset manager to a
// one-shot (or --watch) build tool.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/shaderc/compiler/batch"
	"github.com/spaghettifunk/shaderc/compiler/config"
	"github.com/spaghettifunk/shaderc/compiler/core"
	"github.com/spaghettifunk/shaderc/compiler/spirv"
)

func main() {
	configPath := flag.String("config", "shaderc.toml", "path to the build manifest")
	force := flag.Bool("force", false, "recompile even if the output header is newer than every input")
	dumpVulkan := flag.Bool("dump-vulkan-source", false, "print each shader's rewritten Vulkan GLSL to stderr before assembling it")
	subdir := flag.String("subdir", "", "restrict the shader walk to this subdirectory of shader_dir")
	watch := flag.Bool("watch", false, "keep running and recompile on filesystem changes")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		core.SetDebug()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		core.LogFatal("%v", err)
	}

	shaderDir := cfg.ShaderDir
	if *subdir != "" {
		shaderDir = filepath.Join(shaderDir, *subdir)
	}

	asm := &spirv.External{Path: cfg.AssemblerPath, Verbose: *dumpVulkan}

	run := func() {
		if err := buildOnce(cfg, shaderDir, asm, *force); err != nil {
			core.LogError("%v", err)
		}
	}

	run()

	if !*watch {
		return
	}

	if err := watchLoop(shaderDir, run); err != nil {
		core.LogFatal("%v", err)
	}
}

// builtinSkipDirs is always honored in addition to any manifest-configured
// ones: the walk never descends into a directory literally named "gen"
// (a prior pass's own output staging area).
var builtinSkipDirs = []string{"gen"}

// discover walks shaderDir and returns every regular file in
// deterministic (lexically sorted) path order. Directories named in
// skip (plus the always-on "gen") are pruned entirely.
func discover(shaderDir string, skipNames []string) ([]string, error) {
	skip := make(map[string]bool, len(builtinSkipDirs)+len(skipNames))
	for _, d := range builtinSkipDirs {
		skip[d] = true
	}
	for _, d := range skipNames {
		skip[d] = true
	}

	var paths []string
	err := filepath.WalkDir(shaderDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != shaderDir && skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// buildOnce runs discovery, the compile batch, and writes the header.
// When force is false and the header is newer than every discovered
// input, the build is skipped entirely.
func buildOnce(cfg *config.BuildConfig, shaderDir string, asm spirv.Assembler, force bool) error {
	paths, err := discover(shaderDir, cfg.SkipDirs)
	if err != nil {
		return err
	}

	if !force {
		if fresh, err := headerIsFresh(cfg.OutputHeader, paths); err == nil && fresh {
			core.LogInfo("generated header is up to date, skipping (use --force to override)")
			return nil
		}
	}

	sources := make([]batch.Source, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		sources = append(sources, batch.Source{Path: p, Src: raw})
	}

	result := batch.Compile(sources, asm)
	core.LogInfo("compiled %d shader(s) from %s", len(result.Shaders), shaderDir)

	if err := os.MkdirAll(filepath.Dir(cfg.OutputHeader), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(cfg.OutputHeader, []byte(result.Header), 0o644); err != nil {
		core.LogFatal("%s: %v", core.ErrHeaderWriteFailed.Error(), err)
		return err
	}

	if result.Fatal {
		core.LogFatal("aborting: the compile batch hit a fatal directive error")
		return fmt.Errorf("compile batch hit a fatal directive error")
	}

	return nil
}

func headerIsFresh(headerPath string, inputs []string) (bool, error) {
	hi, err := os.Stat(headerPath)
	if err != nil {
		return false, err
	}
	for _, p := range inputs {
		si, err := os.Stat(p)
		if err != nil {
			return false, err
		}
		if si.ModTime().After(hi.ModTime()) {
			return false, nil
		}
	}
	return true, nil
}

// watchLoop runs an fsnotify event/error channel select loop: it
// watches shaderDir for create/write events and reruns the build,
// debounced by a short settle delay so saving several files in quick
// succession triggers one rebuild rather than many.
func watchLoop(shaderDir string, run func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watchRecursive(watcher, shaderDir); err != nil {
		return err
	}

	core.LogInfo("watching %s for changes", shaderDir)

	var pending *time.Timer
	debounce := 150 * time.Millisecond
	trigger := make(chan struct{}, 1)

	for {
		select {
		case e, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if pending == nil {
					pending = time.AfterFunc(debounce, func() { trigger <- struct{}{} })
				} else {
					pending.Reset(debounce)
				}
			}
		case err := <-watcher.Errors:
			core.LogError("watch: %v", err)
		case <-trigger:
			run()
		}
	}
}

func watchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
