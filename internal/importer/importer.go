package importer

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"compucar-promo/internal/model"
	"compucar-promo/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Source opens a promo code definition file by reference (a local path or
// an S3 key).
type Source interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// Result summarises one import run.
type Result struct {
	Created    int
	Duplicates int
}

// Importer bulk-loads promo code definitions from gzipped CSV files.
//
// Each record is `code,type,value[,min_subtotal,max_redemptions,
// per_user_limit,starts_at,expires_at]`; trailing fields may be empty or
// omitted, timestamps are RFC 3339. Lines starting with '#' are comments.
type Importer struct {
	source  Source
	service service.PromoService
	logger  zerolog.Logger
}

// New creates a new promo code importer.
func New(source Source, svc service.PromoService, logger zerolog.Logger) *Importer {
	return &Importer{
		source:  source,
		service: svc,
		logger:  logger.With().Str("component", "promo-importer").Logger(),
	}
}

// Import reads one definition file and creates the codes it contains.
// Codes that already exist are counted and skipped so imports can be rerun.
func (i *Importer) Import(ctx context.Context, ref string) (Result, error) {
	i.logger.Info().Str("ref", ref).Msg("importing promo codes")

	body, err := i.source.Open(ctx, ref)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", ref, err)
	}
	defer body.Close()

	gzipReader, err := gzip.NewReader(body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create gzip reader for %s: %w", ref, err)
	}
	defer gzipReader.Close()

	reader := csv.NewReader(gzipReader)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	var result Result
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to read %s: %w", ref, err)
		}
		line++

		promo, err := parseRecord(record)
		if err != nil {
			return result, fmt.Errorf("invalid record on line %d of %s: %w", line, ref, err)
		}

		if _, err := i.service.Create(ctx, promo); err != nil {
			if errors.Is(err, model.ErrDuplicateCode) {
				result.Duplicates++
				continue
			}
			return result, fmt.Errorf("failed to create code %q: %w", promo.Code, err)
		}
		result.Created++
	}

	i.logger.Info().
		Str("ref", ref).
		Int("created", result.Created).
		Int("duplicates", result.Duplicates).
		Msg("promo code import finished")

	return result, nil
}

func parseRecord(record []string) (*model.PromoCode, error) {
	if len(record) < 3 {
		return nil, fmt.Errorf("expected at least 3 fields, got %d", len(record))
	}

	promo := &model.PromoCode{
		Code:         record[0],
		DiscountType: model.DiscountType(record[1]),
	}
	if !promo.DiscountType.Valid() {
		return nil, fmt.Errorf("unknown discount type %q", record[1])
	}

	value, err := decimal.NewFromString(record[2])
	if err != nil {
		return nil, fmt.Errorf("invalid discount value %q: %w", record[2], err)
	}
	promo.DiscountValue = value

	if v := field(record, 3); v != "" {
		minimum, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid minimum subtotal %q: %w", v, err)
		}
		promo.MinimumSubtotal = &minimum
	}

	if v := field(record, 4); v != "" {
		promo.MaxRedemptions, err = parseLimit(v)
		if err != nil {
			return nil, fmt.Errorf("invalid max redemptions %q: %w", v, err)
		}
	}

	if v := field(record, 5); v != "" {
		promo.PerUserLimit, err = parseLimit(v)
		if err != nil {
			return nil, fmt.Errorf("invalid per-user limit %q: %w", v, err)
		}
	}

	if v := field(record, 6); v != "" {
		promo.StartsAt, err = parseTime(v)
		if err != nil {
			return nil, fmt.Errorf("invalid starts-at %q: %w", v, err)
		}
	}

	if v := field(record, 7); v != "" {
		promo.ExpiresAt, err = parseTime(v)
		if err != nil {
			return nil, fmt.Errorf("invalid expires-at %q: %w", v, err)
		}
	}

	return promo, nil
}

func field(record []string, index int) string {
	if index >= len(record) {
		return ""
	}
	return record[index]
}

func parseLimit(value string) (*int, error) {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return nil, err
	}
	if parsed <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	return &parsed, nil
}

func parseTime(value string) (*time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
