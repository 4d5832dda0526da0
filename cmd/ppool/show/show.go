// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package show

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/ppool/internal/jobfile"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag = "file"

	formatterIndent = 2
)

// ErrRenderJobfile is returned when the jobfile cannot be rendered.
var ErrRenderJobfile = errors.New("failed to render jobfile")

var jsonFormatter = colorjson.NewFormatter()

func init() {
	jsonFormatter.Indent = formatterIndent
}

// ShowCmd is the command that fetches a jobfile, validates it, and
// pretty-prints the resolved definition.
var ShowCmd = &cli.Command{
	Name: "show",
	Description: `Fetch and validate a jobfile, then print the resolved definition as JSON.
Jobfile URLs use Hashicorp's go-getter syntax.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     fileFlag,
			Aliases:  []string{"f"},
			Usage:    "Specify the URL of the YAML jobfile to show.",
			OnlyOnce: true,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		def, err := jobfile.Load(ctx, cmd.String(fileFlag))
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		rendered, err := render(def)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		_, err = fmt.Fprintln(cmd.Writer, rendered)

		return err
	},
}

// render round-trips the definition through encoding/json into the generic
// shape the color formatter works on.
func render(def *jobfile.Definition) (string, error) {
	data, err := json.Marshal(def)
	if err != nil {
		return "", errors.Join(ErrRenderJobfile, err)
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", errors.Join(ErrRenderJobfile, err)
	}

	pretty, err := jsonFormatter.Marshal(obj)
	if err != nil {
		return "", errors.Join(ErrRenderJobfile, err)
	}

	return string(pretty), nil
}
