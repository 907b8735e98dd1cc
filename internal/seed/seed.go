// Package seed fills the database with reference data: the configured topic
// tags and, on demand, questions imported from a CSV file.
package seed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m3rciful/codemasterbot/internal/config"
	"github.com/m3rciful/codemasterbot/internal/logger"
	"github.com/m3rciful/codemasterbot/internal/repository"
)

const component = "seed"

// Row is one parsed CSV record.
type Row struct {
	Name        string
	Description string
	Syntax      string
	Tags        []string
}

// Stats summarizes an import run.
type Stats struct {
	Created     int
	Skipped     int
	BadRows     int
	UnknownTags int
}

// Tags ensures every configured topic exists as a tag.
func Tags(ctx context.Context, repo *repository.QuestionRepo, topics []config.Topic) error {
	for _, t := range topics {
		if _, err := repo.EnsureTag(ctx, t.Name, t.Slug); err != nil {
			return fmt.Errorf("seed tag %q: %w", t.Slug, err)
		}
	}
	logger.Info(ctx, component, "tags.seeded", slog.Int("count", len(topics)))
	return nil
}

// QuestionsFromFile imports questions from a CSV file on disk.
func QuestionsFromFile(ctx context.Context, repo *repository.QuestionRepo, path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open questions file: %w", err)
	}
	defer f.Close()
	return Questions(ctx, repo, f)
}

// Questions imports questions from CSV data with a header row of
// name, description, syntax, tags. The tags field holds comma-separated tag
// names. Rows without a name or description are skipped with a warning, as
// are tags that do not exist in the database. Existing questions are left
// untouched but still get the listed tags attached.
func Questions(ctx context.Context, repo *repository.QuestionRepo, data io.Reader) (Stats, error) {
	rows, bad, err := Parse(data)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{BadRows: bad}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		id, created, err := repo.UpsertQuestion(ctx, row.Name, row.Description, row.Syntax)
		if err != nil {
			return stats, fmt.Errorf("import question %q: %w", row.Name, err)
		}
		if created {
			stats.Created++
		} else {
			stats.Skipped++
			logger.Debug(ctx, component, "question.exists", slog.String("name", row.Name))
		}

		for _, tagName := range row.Tags {
			tag, err := repo.TagByName(ctx, tagName)
			if err != nil {
				stats.UnknownTags++
				logger.Warn(ctx, component, "tag.unknown",
					slog.String("question", row.Name),
					slog.String("tag", tagName),
				)
				continue
			}
			if err := repo.AttachTag(ctx, id, tag.ID); err != nil {
				return stats, fmt.Errorf("attach tag %q to %q: %w", tagName, row.Name, err)
			}
		}
	}

	logger.Info(ctx, component, "questions.imported",
		slog.Int("created", stats.Created),
		slog.Int("skipped", stats.Skipped),
		slog.Int("bad_rows", stats.BadRows),
		slog.Int("unknown_tags", stats.UnknownTags),
	)
	return stats, nil
}

// Parse reads the CSV stream and returns the well-formed rows along with the
// count of rows missing a required field.
func Parse(data io.Reader) ([]Row, int, error) {
	reader := csv.NewReader(data)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"name", "description"} {
		if _, ok := idx[required]; !ok {
			return nil, 0, fmt.Errorf("csv header missing %q column", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	bad := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read csv row: %w", err)
		}

		row := Row{
			Name:        field(record, "name"),
			Description: field(record, "description"),
			Syntax:      field(record, "syntax"),
		}
		if row.Name == "" || row.Description == "" {
			bad++
			continue
		}
		for _, tag := range strings.Split(field(record, "tags"), ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				row.Tags = append(row.Tags, tag)
			}
		}
		rows = append(rows, row)
	}
	return rows, bad, nil
}
