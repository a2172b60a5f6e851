// Package config loads the HCL job definition: the ordered list of Ant
// build steps to run, with their targets, properties, and variables.
package config

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/fugi/antrun/internal/ctxlog"
	"github.com/fugi/antrun/internal/envvars"
)

// Step is one configured build step.
type Step struct {
	// Name labels the step in logs.
	Name string
	// Targets, Ant, AntOpts, BuildFile and Properties mirror the invoker's
	// step fields.
	Targets    string
	Ant        string
	AntOpts    string
	BuildFile  string
	Properties string
	// Vars are build-scoped variables layered over the host environment
	// and passed to Ant as -D definitions.
	Vars map[string]string
	// Sensitive names the Vars keys to mask in logged command lines.
	Sensitive []string
}

// Job is a loaded job definition.
type Job struct {
	Steps []Step
}

// fileRoot decodes all top-level blocks of a job file.
type fileRoot struct {
	Steps []*stepBlock `hcl:"step,block"`
}

type stepBlock struct {
	Name       string            `hcl:"name,label"`
	Targets    string            `hcl:"targets,optional"`
	Ant        string            `hcl:"ant,optional"`
	AntOpts    string            `hcl:"opts,optional"`
	BuildFile  string            `hcl:"build_file,optional"`
	Properties string            `hcl:"properties,optional"`
	Vars       map[string]string `hcl:"vars,optional"`
	Sensitive  []string          `hcl:"sensitive,optional"`
}

// LoadJob parses a job file. Expressions in the file can reference the
// host environment through the `env` object, e.g. "dist-${env.BUILD_ID}".
func LoadJob(ctx context.Context, path string, env envvars.Vars) (*Job, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Job loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing job file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, evalContext(env), &root); diags.HasErrors() {
		return nil, fmt.Errorf("decoding job file %s: %w", path, diags)
	}

	if len(root.Steps) == 0 {
		return nil, fmt.Errorf("job file %s defines no steps", path)
	}

	job := &Job{Steps: make([]Step, 0, len(root.Steps))}
	seen := make(map[string]bool, len(root.Steps))
	for _, blk := range root.Steps {
		if seen[blk.Name] {
			return nil, fmt.Errorf("job file %s: duplicate step %q", path, blk.Name)
		}
		seen[blk.Name] = true
		job.Steps = append(job.Steps, Step{
			Name:       blk.Name,
			Targets:    blk.Targets,
			Ant:        blk.Ant,
			AntOpts:    blk.AntOpts,
			BuildFile:  blk.BuildFile,
			Properties: blk.Properties,
			Vars:       blk.Vars,
			Sensitive:  blk.Sensitive,
		})
	}

	logger.Debug("Job loading complete.", "steps", len(job.Steps))
	return job, nil
}

// evalContext exposes the host environment to job-file expressions.
func evalContext(env envvars.Vars) *hcl.EvalContext {
	vals := make(map[string]cty.Value, len(env))
	for k, v := range env {
		vals[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vals),
		},
	}
}

// SensitiveSet converts a step's sensitive list to the set shape the
// invoker consumes.
func (s Step) SensitiveSet() map[string]struct{} {
	if len(s.Sensitive) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(s.Sensitive))
	for _, k := range s.Sensitive {
		out[k] = struct{}{}
	}
	return out
}
