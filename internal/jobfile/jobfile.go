// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jobfile reads YAML batch job files and runs them against a
// conversion server. A job file lets a user queue several operations and
// submit them in one go.
package jobfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/convertd/internal/client"
	"github.com/pdiddy/convertd/pkg/types"
)

// JobFile is the on-disk representation of a batch of conversion jobs.
type JobFile struct {
	Jobs []Job `yaml:"jobs"`
}

// Job describes one operation to run.
type Job struct {
	// Name labels the job in status output; defaults to the operation.
	Name string `yaml:"name,omitempty"`

	// Operation is the conversion to perform.
	Operation types.Operation `yaml:"operation"`

	// Inputs are the input file paths.
	Inputs []string `yaml:"inputs"`

	// Output is where the result lands: a file path for single-output
	// operations, a directory for multi-output ones. Defaults to the
	// directory of the first input.
	Output string `yaml:"output,omitempty"`

	// Options holds operation parameters (password, ranges, angle, ...).
	Options map[string]string `yaml:"options,omitempty"`
}

// Label returns the job's display name.
func (j Job) Label() string {
	if j.Name != "" {
		return j.Name
	}
	return string(j.Operation)
}

// Read loads and validates a job file.
func Read(path string) (*JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}

	var jf JobFile
	if err := yaml.Unmarshal(data, &jf); err != nil {
		return nil, fmt.Errorf("parsing job file: %w", err)
	}
	if len(jf.Jobs) == 0 {
		return nil, fmt.Errorf("job file %s contains no jobs", path)
	}

	for i, j := range jf.Jobs {
		if !j.Operation.Valid() {
			return nil, fmt.Errorf("job %d (%s): unknown operation %q", i+1, j.Label(), j.Operation)
		}
		if len(j.Inputs) == 0 {
			return nil, fmt.Errorf("job %d (%s): no inputs", i+1, j.Label())
		}
	}
	return &jf, nil
}

// Request builds the wire request for the job, loading input files from
// disk.
func (j Job) Request() (*types.Request, error) {
	files := make([]types.File, 0, len(j.Inputs))
	for _, p := range j.Inputs {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading input %s: %w", p, err)
		}
		files = append(files, types.File{Name: filepath.Base(p), Data: data})
	}

	return &types.Request{
		Op:           j.Operation,
		SourceFormat: strings.TrimPrefix(filepath.Ext(j.Inputs[0]), "."),
		Options:      j.Options,
		Files:        files,
	}, nil
}

// outputPath resolves where the job's results are saved.
func (j Job) outputPath() string {
	if j.Output != "" {
		return j.Output
	}
	return filepath.Join(filepath.Dir(j.Inputs[0]), j.Label()+"_output")
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Succeeded int
	Failed    int
}

// Total returns the total number of jobs processed.
func (r BatchResult) Total() int {
	return r.Succeeded + r.Failed
}

// HasFailures reports whether any job failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Run submits every job through the client, printing per-job status
// lines to w and returning a summary. A failed job does not stop the
// batch.
func Run(ctx context.Context, c *client.Client, jf *JobFile, w io.Writer) BatchResult {
	var result BatchResult

	for _, job := range jf.Jobs {
		req, err := job.Request()
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", job.Label(), err)
			result.Failed++
			continue
		}

		res, err := c.Do(ctx, req)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", job.Label(), err)
			result.Failed++
			continue
		}
		if res.Failed() {
			fmt.Fprintf(w, "failed:  %s (%s)\n", job.Label(), res.Error)
			result.Failed++
			continue
		}

		paths, err := client.SaveFiles(res.Files, job.outputPath())
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", job.Label(), err)
			result.Failed++
			continue
		}

		fmt.Fprintf(w, "done:    %s (%d file(s) -> %s)\n", job.Label(), len(paths), job.outputPath())
		result.Succeeded++
	}

	fmt.Fprintf(w, "\nBatch summary: %d succeeded, %d failed (total: %d)\n",
		result.Succeeded, result.Failed, result.Total())
	return result
}
