package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/modsync/internal/formatter"
	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/repositories"
	"github.com/desertthunder/modsync/internal/services"
	"github.com/desertthunder/modsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// findProfile resolves the "profile" argument by ID or name.
func (r *Runner) findProfile(cmd *cli.Command) (*models.Profile, error) {
	ref := strings.TrimSpace(cmd.StringArg("profile"))
	if ref == "" {
		return nil, fmt.Errorf("%w: profile ID or name", shared.ErrMissingArgument)
	}
	return r.store.FindProfile(ref)
}

// ProfileCreate creates a profile and its mod folder.
func (r *Runner) ProfileCreate(ctx context.Context, cmd *cli.Command) error {
	url := strings.TrimSpace(cmd.String("url"))
	if url != "" {
		if _, err := services.ValidateURL(url); err != nil {
			return err
		}
	}

	profile, err := r.store.CreateProfile(repositories.CreateProfileParams{
		Name:          cmd.StringArg("name"),
		Description:   cmd.String("description"),
		ModFolderPath: cmd.String("folder"),
		ServerSyncURL: url,
	})
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	r.writePlain("✓ Created profile %s (%s)\n", profile.Name, profile.ID)
	r.writePlain("Mod folder: %s\n", profile.ModFolderPath)
	if profile.ServerSyncURL == "" {
		r.writePlain("No server URL yet. Set one with: modsync profile set-url %s <url>\n", profile.ID)
	}
	return nil
}

// ProfileList prints every profile.
func (r *Runner) ProfileList(ctx context.Context, cmd *cli.Command) error {
	profiles, err := r.store.ListProfiles()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(profiles, true)
	}

	if len(profiles) == 0 {
		r.writePlain("No profiles yet. Create one with: modsync profile create <name>\n")
		return nil
	}

	r.writePlain("%s\n", formatter.RenderProfiles(profiles))
	return nil
}

// ProfileShow prints a profile and its mod table.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.findProfile(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, true)
	}

	data, err := formatter.ExportToText(profile)
	if err != nil {
		return err
	}
	r.writePlain("%s", data)
	return nil
}

// ProfileDelete removes a profile.
func (r *Runner) ProfileDelete(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.findProfile(cmd)
	if err != nil {
		return err
	}

	if err := r.store.DeleteProfile(profile.ID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	r.writePlain("✓ Deleted profile %s\n", profile.Name)
	return nil
}

// ProfileSetURL sets or clears the server catalog URL.
func (r *Runner) ProfileSetURL(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.findProfile(cmd)
	if err != nil {
		return err
	}

	url := strings.TrimSpace(cmd.StringArg("url"))
	switch {
	case cmd.Bool("clear"):
		url = ""
	case url == "":
		return fmt.Errorf("%w: url (or --clear)", shared.ErrMissingArgument)
	default:
		if _, err := services.ValidateURL(url); err != nil {
			return err
		}
	}

	profile.ServerSyncURL = url
	if err := r.store.SaveProfile(profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	if url == "" {
		r.writePlain("✓ Cleared server URL of %s\n", profile.Name)
	} else {
		r.writePlain("✓ %s now syncs from %s\n", profile.Name, url)
	}
	return nil
}

// ProfileScan reconciles the profile with its mod folder.
func (r *Runner) ProfileScan(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.findProfile(cmd)
	if err != nil {
		return err
	}

	report, err := repositories.Scan(profile, r.archive, cmd.Bool("prune"))
	if err != nil {
		return err
	}

	if !report.Changed() {
		r.writePlain("✓ %s is up to date with %s\n", profile.Name, profile.ModFolderPath)
		return nil
	}

	if err := r.store.SaveProfile(profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	r.writePlainHeader(fmt.Sprintf("Scanned %s", profile.ModFolderPath))
	for _, group := range []struct {
		label string
		names []string
	}{
		{"Added", report.Added},
		{"Updated", report.Updated},
		{"Removed", report.Removed},
	} {
		if len(group.names) == 0 {
			continue
		}
		r.writePlain("%s (%d):\n", group.label, len(group.names))
		for _, name := range group.names {
			r.writePlain("  • %s\n", name)
		}
	}
	return nil
}

// ProfileExport writes the mod list to a file.
func (r *Runner) ProfileExport(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.findProfile(cmd)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(profile, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported profile", "profile", profile.Name, "format", format, "path", path)
	r.writePlain("✓ Exported %d mods to %s\n", len(profile.Mods), path)
	return nil
}

// ProfileOpen opens the mod folder with the platform's file manager.
func (r *Runner) ProfileOpen(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.findProfile(cmd)
	if err != nil {
		return err
	}

	if err := shared.OpenPath(profile.ModFolderPath); err != nil {
		r.writePlain("Mod folder: %s\n", profile.ModFolderPath)
		return err
	}
	return nil
}
