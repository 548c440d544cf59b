package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sv2v/internal/diag"
	"sv2v/internal/diagfmt"
	"sv2v/internal/driver"
	"sv2v/internal/project"
	"sv2v/internal/source"
)

func convertExecution(cmd *cobra.Command, args []string) error {
	defineFlags, err := cmd.Flags().GetStringArray("define")
	if err != nil {
		return err
	}
	incdirs, err := cmd.Flags().GetStringArray("incdir")
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return err
	}
	colorValue, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}

	useColor, err := readColorMode(colorValue)
	if err != nil {
		return err
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	defines := make(map[string]string)
	var files []string
	// plusargs in the file list are accepted for compatibility with
	// common simulator command lines
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "+define+"):
			for _, def := range strings.Split(strings.TrimPrefix(arg, "+define+"), "+") {
				name, value := splitDefineArg(def)
				defines[name] = value
			}
		case strings.HasPrefix(arg, "+incdir+"):
			incdirs = append(incdirs, strings.Split(strings.TrimPrefix(arg, "+incdir+"), "+")...)
		default:
			files = append(files, arg)
		}
	}
	for _, def := range defineFlags {
		name, value := splitDefineArg(def)
		defines[name] = value
	}

	// fall back to the project manifest when no files are given
	if len(files) == 0 {
		manifest, found, err := project.Load(".")
		if err != nil {
			return err
		}
		if found {
			files, err = manifest.SourceFiles()
			if err != nil {
				return err
			}
			incdirs = append(incdirs, manifest.Incdirs()...)
			for name, value := range manifest.Config.Convert.Defines {
				if _, ok := defines[name]; !ok {
					defines[name] = value
				}
			}
			if output == "" {
				output = manifest.Config.Convert.Output
			}
		}
	}

	var cache *driver.Cache
	if !noCache {
		if opened, err := driver.OpenCache("sv2v"); err == nil {
			cache = opened
		}
	}
	if clearCache {
		_ = cache.DropAll()
	}

	req := &driver.Request{
		Files:   files,
		Defines: defines,
		Incdirs: incdirs,
		Cache:   cache,
	}

	var result *driver.Result
	if shouldUseTUI(uiModeValue, output == "") && len(files) > 1 {
		result, err = runWithUI(cmd.Context(), "sv2v", files, req)
	} else {
		result, err = driver.Run(contextOrBackground(cmd), req)
	}
	if err != nil {
		reportError(err, result, useColor)
		return err
	}

	if output == "" {
		_, err = os.Stdout.Write(result.Output)
		return err
	}
	return os.WriteFile(output, result.Output, 0o644)
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func reportError(err error, result *driver.Result, useColor bool) {
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		fs := resultFileSet(result)
		diagfmt.Write(os.Stderr, d, fs, diagfmt.Options{Color: useColor})
		return
	}
	fmt.Fprintf(os.Stderr, "sv2v: %v\n", err)
}

func resultFileSet(result *driver.Result) *source.FileSet {
	if result != nil {
		return result.FileSet
	}
	return nil
}

func splitDefineArg(def string) (string, string) {
	if i := strings.IndexByte(def, '='); i >= 0 {
		return def[:i], def[i+1:]
	}
	return def, ""
}
