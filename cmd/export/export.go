package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"healthcare-admin-console/internal/delivery/dto"
	"healthcare-admin-console/internal/domain/entity"
	"healthcare-admin-console/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

const (
	formatXLSX = "xlsx"
	formatZIP  = "zip"
)

// cliActor is the actor id sessions opened from the command line run under
const cliActor = "cli"

type options struct {
	configPath   string
	screen       string
	search       string
	dateMode     string
	start        string
	end          string
	format       string
	exportType   string
	outDir       string
	diagnosticID string
	doctorID     string
	companyID    string
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	flags := pflag.NewFlagSet("export", pflag.ContinueOnError)
	flags.StringVar(&opts.configPath, "config", "", "env file with the console configuration")
	flags.StringVarP(&opts.screen, "screen", "s", entity.ScreenDiagnosticsBookings, "screen to export")
	flags.StringVarP(&opts.search, "search", "q", "", "search term")
	flags.StringVar(&opts.dateMode, "date-mode", string(entity.DateModeAll), "all, today, yesterday, thisMonth or custom")
	flags.StringVar(&opts.start, "start", "", "custom range start day (YYYY-MM-DD)")
	flags.StringVar(&opts.end, "end", "", "custom range end day (YYYY-MM-DD)")
	flags.StringVarP(&opts.format, "format", "f", formatXLSX, "xlsx or zip")
	flags.StringVar(&opts.exportType, "type", string(entity.ExportTypeBoth), "archive content: reports, prescriptions or both")
	flags.StringVarP(&opts.outDir, "out", "o", ".", "output directory")
	flags.StringVar(&opts.diagnosticID, "diagnostic-id", "", "diagnostic center scope")
	flags.StringVar(&opts.doctorID, "doctor-id", "", "doctor scope")
	flags.StringVar(&opts.companyID, "company-id", "", "company scope")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if opts.format != formatXLSX && opts.format != formatZIP {
		return nil, fmt.Errorf("unknown format %q, want %s or %s", opts.format, formatXLSX, formatZIP)
	}
	if _, ok := entity.FindScreen(opts.screen); !ok {
		return nil, fmt.Errorf("unknown screen %q", opts.screen)
	}
	return opts, nil
}

func (o *options) scope() entity.Scope {
	return entity.Scope{
		ActorID:      cliActor,
		ActorName:    "Command line export",
		Role:         entity.RoleAdmin,
		DiagnosticID: o.diagnosticID,
		DoctorID:     o.doctorID,
		CompanyID:    o.companyID,
	}
}

// run exports the filtered view of one screen into outDir and returns the written path
func run(ctx context.Context, fs afero.Fs, sessions usecase.ScreenSessionUsecase, opts *options, log *logrus.Logger) (string, error) {
	scope := opts.scope()

	session, err := sessions.OpenSession(ctx, scope, opts.screen, nil)
	if err != nil {
		return "", err
	}
	defer sessions.CloseSession(context.WithoutCancel(ctx), scope, session.ID)

	if _, err := sessions.ApplyFilter(ctx, scope, session.ID, &dto.FilterRequest{
		Search:   opts.search,
		DateMode: opts.dateMode,
		Start:    opts.start,
		End:      opts.end,
	}); err != nil {
		return "", err
	}

	var name string
	var content []byte
	switch opts.format {
	case formatXLSX:
		file, err := sessions.ExportSpreadsheet(ctx, scope, session.ID, dto.ExportTargetFiltered)
		if err != nil {
			return "", err
		}
		name, content = file.Name, file.Content
	case formatZIP:
		archive, err := sessions.ExportArchive(ctx, scope, session.ID, dto.ExportTargetFiltered, opts.exportType)
		if err != nil {
			return "", err
		}
		for _, failure := range archive.Failures {
			log.Warnf("Failed to fetch %s %s of record %s, noted in %s: %s", failure.Kind, failure.URL, failure.RecordID, failure.Entry, failure.Reason)
		}
		name, content = archive.Name, archive.Content
	default:
		return "", errors.New("unknown format")
	}

	if err := fs.MkdirAll(opts.outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(opts.outDir, name)
	if err := afero.WriteFile(fs, path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
