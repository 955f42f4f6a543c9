package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"healthcare-admin-console/internal/domain/entity"
	"healthcare-admin-console/internal/domain/repository"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

// ErrNothingToDownload is returned when not a single attachment made it into the archive
var ErrNothingToDownload = errors.New("no attachments available to download")

const (
	ArchiveContentType = "application/zip"

	errorNoteSuffix  = ".ERROR.txt"
	fallbackExt      = ".bin"
	maxExtensionSize = 8
)

// ArchiveFailure describes one attachment that could not be fetched
type ArchiveFailure struct {
	RecordID string                `json:"record_id"`
	Kind     entity.AttachmentKind `json:"kind"`
	URL      string                `json:"url"`
	Entry    string                `json:"entry"`
	Reason   string                `json:"reason"`
}

// ArchiveFile is a zip of fetched attachments plus one error note per failed fetch
type ArchiveFile struct {
	Name        string
	ContentType string
	Content     []byte
	Added       int
	Failures    []ArchiveFailure
}

// ArchiveExporter bundles record attachments into a zip archive
type ArchiveExporter struct {
	fetcher     repository.AttachmentFetcher
	concurrency int
	log         *logrus.Logger
}

func NewArchiveExporter(fetcher repository.AttachmentFetcher, concurrency int, log *logrus.Logger) *ArchiveExporter {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ArchiveExporter{
		fetcher:     fetcher,
		concurrency: concurrency,
		log:         log,
	}
}

type archiveJob struct {
	record *entity.Record
	kind   entity.AttachmentKind
	url    string
	base   string
}

type fetchResult struct {
	data []byte
	err  error
}

// Export fetches every attachment of the requested kinds and writes them in record order.
// A failed fetch becomes a "<entry>.ERROR.txt" note and the run continues.
func (e *ArchiveExporter) Export(ctx context.Context, screen *entity.Screen, records []entity.Record, exportType entity.ExportType, rangeLabel string) (*ArchiveFile, error) {
	jobs := planArchive(screen, records, exportType)
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: selected records carry no %s", ErrNothingToDownload, exportType)
	}

	results := make([]fetchResult, len(jobs))
	p := pool.New().WithMaxGoroutines(e.concurrency)
	for i := range jobs {
		p.Go(func() {
			if err := ctx.Err(); err != nil {
				results[i] = fetchResult{err: err}
				return
			}
			data, err := e.fetcher.Fetch(ctx, jobs[i].url)
			results[i] = fetchResult{data: data, err: err}
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := make(map[string]int)
	archive := &ArchiveFile{
		Name:        fmt.Sprintf("%s-%s-%s.zip", screen.Name, exportType, rangeLabel),
		ContentType: ArchiveContentType,
	}

	for i, job := range jobs {
		res := results[i]
		if res.err != nil {
			entry := uniqueName(names, job.base+urlExtension(job.url)+errorNoteSuffix)
			e.log.Warnf("Failed to fetch attachment %s for record %s: %+v", job.url, job.record.ID, res.err)
			note := fmt.Sprintf("Failed to download %s attachment for record %s\nURL: %s\nReason: %v\n", job.kind, job.record.ID, job.url, res.err)
			if err := writeZipEntry(zw, entry, []byte(note)); err != nil {
				return nil, err
			}
			archive.Failures = append(archive.Failures, ArchiveFailure{
				RecordID: job.record.ID,
				Kind:     job.kind,
				URL:      job.url,
				Entry:    entry,
				Reason:   res.err.Error(),
			})
			continue
		}

		entry := uniqueName(names, job.base+fileExtension(job.url, res.data))
		if err := writeZipEntry(zw, entry, res.data); err != nil {
			return nil, err
		}
		archive.Added++
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	if archive.Added == 0 {
		return nil, fmt.Errorf("%w: all %d downloads failed", ErrNothingToDownload, len(jobs))
	}

	archive.Content = buf.Bytes()
	e.log.Infof("Archive %s built with %d files and %d failures", archive.Name, archive.Added, len(archive.Failures))
	return archive, nil
}

func planArchive(screen *entity.Screen, records []entity.Record, exportType entity.ExportType) []archiveJob {
	var jobs []archiveJob
	for i := range records {
		record := &records[i]
		id := record.Text(screen.ArchiveIDField)
		if id == "" {
			id = record.ID
		}
		prefix := sanitizeName(id) + "_" + sanitizeName(record.Text(screen.ArchiveNameField))

		for _, kind := range exportType.Kinds() {
			if !screen.SupportsAttachment(kind) {
				continue
			}
			urls := record.Attachment(kind).List()
			for n, u := range urls {
				base := prefix + "_" + string(kind)
				if len(urls) > 1 {
					base += "_" + strconv.Itoa(n+1)
				}
				jobs = append(jobs, archiveJob{record: record, kind: kind, url: u, base: base})
			}
		}
	}
	return jobs
}

func writeZipEntry(zw *zip.Writer, name string, content []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9.-]+`)

func sanitizeName(s string) string {
	s = unsafeNameChars.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "_.")
	if s == "" {
		return "unknown"
	}
	return s
}

// uniqueName suffixes "-2", "-3", ... before the extension when name is taken
func uniqueName(used map[string]int, name string) string {
	used[name]++
	if used[name] == 1 {
		return name
	}

	stem, ext := name, ""
	if strings.HasSuffix(name, errorNoteSuffix) {
		stem, ext = strings.TrimSuffix(name, errorNoteSuffix), errorNoteSuffix
	} else if dot := strings.LastIndex(name, "."); dot > 0 {
		stem, ext = name[:dot], name[dot:]
	}
	for n := used[name]; ; n++ {
		candidate := stem + "-" + strconv.Itoa(n) + ext
		if _, taken := used[candidate]; !taken {
			used[candidate] = 1
			return candidate
		}
	}
}

var extensionPattern = regexp.MustCompile(`^\.[a-z0-9]+$`)

func urlExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if len(ext) > maxExtensionSize || !extensionPattern.MatchString(ext) {
		return ""
	}
	return ext
}

// fileExtension prefers the url's extension, then the sniffed content type
func fileExtension(rawURL string, data []byte) string {
	if ext := urlExtension(rawURL); ext != "" {
		return ext
	}
	if len(data) == 0 {
		return fallbackExt
	}
	if ext := mimetype.Detect(data).Extension(); ext != "" {
		return ext
	}
	return fallbackExt
}
