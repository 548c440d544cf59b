// Package driver orchestrates a conversion run: it reads and
// preprocesses the input files in order, parses them in parallel,
// applies the conversion passes over the aggregate description list, and
// renders the resulting Verilog. Conversion itself is strictly
// single-threaded; only the per-file front end fans out.
package driver

import (
	"context"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"sv2v/internal/ast"
	"sv2v/internal/convert"
	"sv2v/internal/diag"
	"sv2v/internal/lexer"
	"sv2v/internal/parser"
	"sv2v/internal/pipeline"
	"sv2v/internal/preproc"
	"sv2v/internal/source"
)

// Request describes one conversion run.
type Request struct {
	Files    []string
	Defines  map[string]string
	Incdirs  []string
	Progress pipeline.Sink
	Cache    *Cache // nil disables caching
}

// Result carries the rendered output and the file set for diagnostics.
type Result struct {
	Output   []byte
	FileSet  *source.FileSet
	CacheHit bool
}

// Run executes the full pipeline for the request.
func Run(ctx context.Context, req *Request) (*Result, error) {
	if len(req.Files) == 0 {
		return nil, diag.New(diag.DrvNoInput, "no input files")
	}
	sink := req.Progress
	if sink == nil {
		sink = pipeline.NullSink{}
	}

	fs := source.NewFileSet()
	raws := make([][]byte, len(req.Files))

	// reading and preprocessing are sequential: macro definitions
	// persist across files in command-line order
	pp := preproc.New(req.Defines, req.Incdirs)
	fileIDs := make([]source.FileID, len(req.Files))
	for i, path := range req.Files {
		start := time.Now()
		sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageRead, Status: pipeline.StatusWorking})
		raw, err := os.ReadFile(path) // #nosec G304 -- user-supplied input path
		if err != nil {
			sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageRead, Status: pipeline.StatusError, Err: err})
			return &Result{FileSet: fs}, diag.New(diag.DrvReadFailed, "could not read %s: %v", path, err)
		}
		raws[i] = raw
		expanded, err := pp.Expand(path, raw)
		if err != nil {
			sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageRead, Status: pipeline.StatusError, Err: err})
			return &Result{FileSet: fs}, err
		}
		fileIDs[i] = fs.AddVirtual(path, expanded)
		sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageRead, Status: pipeline.StatusDone, Elapsed: time.Since(start)})
	}

	key := cacheKey(raws, req.Defines, req.Incdirs)
	if req.Cache != nil {
		var payload Payload
		if hit, err := req.Cache.Get(key, &payload); err == nil && hit {
			sink.OnEvent(pipeline.Event{Stage: pipeline.StageEmit, Status: pipeline.StatusDone})
			return &Result{Output: payload.Output, FileSet: fs, CacheHit: true}, nil
		}
	}

	// parse in parallel, collecting per-file description lists in order
	perFile := make([][]ast.Description, len(fileIDs))
	group, _ := errgroup.WithContext(ctx)
	group.SetLimit(max(1, runtime.NumCPU()-1))
	for i, fid := range fileIDs {
		group.Go(func() error {
			path := req.Files[i]
			start := time.Now()
			sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageParse, Status: pipeline.StatusWorking})
			tokens, err := lexer.Tokenize(fs.Get(fid))
			if err == nil {
				perFile[i], err = parser.Parse(tokens)
			}
			if err != nil {
				sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageParse, Status: pipeline.StatusError, Err: err})
				return err
			}
			sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageParse, Status: pipeline.StatusDone, Elapsed: time.Since(start)})
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return &Result{FileSet: fs}, err
	}

	var descs []ast.Description
	for _, ds := range perFile {
		descs = append(descs, ds...)
	}

	start := time.Now()
	sink.OnEvent(pipeline.Event{Stage: pipeline.StageConvert, Status: pipeline.StatusWorking})
	converted, err := convert.Run(descs)
	if err != nil {
		sink.OnEvent(pipeline.Event{Stage: pipeline.StageConvert, Status: pipeline.StatusError, Err: err})
		return &Result{FileSet: fs}, err
	}
	sink.OnEvent(pipeline.Event{Stage: pipeline.StageConvert, Status: pipeline.StatusDone, Elapsed: time.Since(start)})

	output := render(converted)
	if req.Cache != nil {
		// cache failures never fail the run
		_ = req.Cache.Put(key, &Payload{Schema: cacheSchemaVersion, Output: output})
	}
	sink.OnEvent(pipeline.Event{Stage: pipeline.StageEmit, Status: pipeline.StatusDone})
	return &Result{Output: output, FileSet: fs}, nil
}

// render prints the converted descriptions as Verilog text.
func render(descs []ast.Description) []byte {
	var sb strings.Builder
	for _, desc := range descs {
		sb.WriteString(desc.String())
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}
