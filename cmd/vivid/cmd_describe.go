package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/Vivid/internal/app"
	"github.com/markdave123-py/Vivid/internal/core/profiles"
	"github.com/markdave123-py/Vivid/internal/core/session"
	"github.com/markdave123-py/Vivid/internal/models"
	"github.com/markdave123-py/Vivid/internal/services"
	"github.com/markdave123-py/Vivid/internal/validation"
)

type describeOptions struct {
	detail      string
	focus       []string
	profiles    []string
	refine      []string
	interactive bool
}

func (c *cli) describeCmd() *cobra.Command {
	var opts describeOptions
	cmd := &cobra.Command{
		Use:   "describe <video>",
		Short: "Generate a description for a video file",
		Long: `Uploads the video to Gemini and prints the description.

Each --refine sends one follow-up instruction in the same conversation and
prints the revised description. With --interactive, follow-ups are read from
stdin until an empty line or EOF.

Example:
  vivid describe clip.mp4 --detail brief --focus dance --profile Ana --refine "make it funnier"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDescribe(cmd, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.detail, "detail", string(models.DefaultDetailLevel), "brief, average or detailed")
	f.StringArrayVar(&opts.focus, "focus", nil, "focus label (repeatable)")
	f.StringArrayVar(&opts.profiles, "profile", nil, "saved profile id or name (repeatable)")
	f.StringArrayVar(&opts.refine, "refine", nil, "follow-up instruction (repeatable)")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "read follow-up instructions from stdin")
	return cmd
}

func (c *cli) runDescribe(cmd *cobra.Command, videoPath string, opts describeOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	level, err := models.ParseDetailLevel(opts.detail)
	if err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	deps, err := app.OpenDeps(ctx, c.cfg, c.logger, c.openProvider)
	if err != nil {
		return err
	}
	defer deps.Close()

	svc := deps.NewDescribeService("cli")
	defer svc.Reset(ctx)

	svc.SetDetailLevel(level)
	for _, label := range opts.focus {
		svc.AddFocus(label)
	}
	for _, ref := range opts.profiles {
		p, ok := findProfile(deps.Profiles, ref)
		if !ok {
			return fmt.Errorf("%w: %s", profiles.ErrNotFound, ref)
		}
		if err := svc.SelectProfile(p.ID, true); err != nil {
			return err
		}
	}

	f, err := os.Open(videoPath)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	name := filepath.Base(videoPath)
	if err := svc.SelectVideo(ctx, name, validation.GuessContentType(name), info.Size(), f); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Generating description for %s...\n", name)
	text, err := svc.Generate(ctx)
	if err != nil {
		if errors.Is(err, session.ErrGenerationFailed) {
			return errors.New(session.MsgGenerationFailed)
		}
		return err
	}
	fmt.Fprintln(out, text)

	for _, msg := range opts.refine {
		refineOnce(cmd, svc, msg)
	}
	if opts.interactive {
		return interactiveRefine(cmd, svc, cmd.InOrStdin())
	}
	return nil
}

// refineOnce prints the revised description, or a notice when the follow-up
// was dropped; the previous description stays current either way.
func refineOnce(cmd *cobra.Command, svc *services.DescribeService, msg string) {
	text, err := svc.Refine(cmd.Context(), msg)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "note: %v\n", err)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\n"+text)
}

func interactiveRefine(cmd *cobra.Command, svc *services.DescribeService, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(cmd.ErrOrStderr(), "\nrefine> ")
		if !sc.Scan() {
			return sc.Err()
		}
		msg := strings.TrimSpace(sc.Text())
		if msg == "" {
			return nil
		}
		refineOnce(cmd, svc, msg)
	}
}

func findProfile(store *profiles.Store, ref string) (models.Profile, bool) {
	if p, ok := store.Get(ref); ok {
		return p, true
	}
	for _, p := range store.List() {
		if strings.EqualFold(p.Name, ref) {
			return p, true
		}
	}
	return models.Profile{}, false
}
