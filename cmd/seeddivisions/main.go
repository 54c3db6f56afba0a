// Command seeddivisions loads the CSI MasterFormat division taxonomy into
// the construction_divisions table. By default it seeds the built-in set;
// pass an Excel workbook to seed a customized taxonomy instead.
//
// Usage:
//
//	go run ./cmd/seeddivisions [divisions.xlsx]
//
// The workbook's first sheet needs a header row followed by columns
// code, name, description, color. Rows with an empty code are skipped.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"hilyte/internal/config"
	"hilyte/internal/domain"
	"hilyte/internal/repository/postgres"
	"hilyte/internal/taxonomy"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	divs := taxonomy.DefaultDivisions()
	if len(os.Args) > 1 {
		divs, err = readWorkbook(os.Args[1])
		if err != nil {
			return fmt.Errorf("read workbook %s: %w", os.Args[1], err)
		}
		log.Printf("Loaded %d divisions from %s", len(divs), os.Args[1])
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := postgres.NewDivisionRepo(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := repo.Upsert(ctx, divs)
	if err != nil {
		return fmt.Errorf("upsert divisions: %w", err)
	}

	log.Printf("Seeded %d divisions", n)
	return nil
}

// readWorkbook parses a division taxonomy from the first sheet of an Excel
// workbook. Columns: A=code, B=name, C=description, D=color.
func readWorkbook(path string) ([]domain.Division, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}

	var divs []domain.Division
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		code := strings.TrimSpace(cellVal(row, 0))
		if code == "" {
			continue
		}

		color := strings.TrimSpace(cellVal(row, 3))
		if color == "" {
			color = taxonomy.FallbackColor
		}

		divs = append(divs, domain.Division{
			Code:        code,
			Name:        strings.TrimSpace(cellVal(row, 1)),
			Description: strings.TrimSpace(cellVal(row, 2)),
			Color:       color,
			SortOrder:   len(divs) + 1,
			IsActive:    true,
		})
	}

	if len(divs) == 0 {
		return nil, fmt.Errorf("no divisions found in workbook")
	}
	return divs, nil
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
