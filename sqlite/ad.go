package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/adscan"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ adscan.AdService = (*AdService)(nil)

const adColumns = `id, title, target_url, resolved_target_url, content_type, content_data,
	page_url, page_title, attempts, visited_ts, attempted_ts, found_ts, errors`

// AdService implements adscan.AdService using SQLite.
type AdService struct {
	db *DB
}

// NewAdService creates a new AdService.
func NewAdService(db *DB) *AdService {
	return &AdService{db: db}
}

// CreateAd stores ad and assigns it a new ID.
func (s *AdService) CreateAd(ctx context.Context, ad *adscan.Ad) error {
	if err := ad.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(ad.ContentData)
	if err != nil {
		return fmt.Errorf("failed to encode content data: %w", err)
	}
	errs, err := encodeErrors(ad.Errors)
	if err != nil {
		return err
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ads (id, ad_key, title, target_url, resolved_target_url, content_type, content_data,
			page_url, page_title, attempts, visited_ts, attempted_ts, found_ts, errors, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, ad.Key(), ad.Title, ad.TargetURL, nullString(ad.ResolvedTargetURL), string(ad.ContentType), string(data),
		nullString(ad.PageURL), nullString(ad.PageTitle), ad.Attempts, ad.VisitedTs, ad.AttemptedTs, ad.FoundTs,
		errs, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	ad.ID = &id
	return nil
}

// FindAdByID retrieves an ad by ID.
func (s *AdService) FindAdByID(ctx context.Context, id string) (*adscan.Ad, error) {
	ads, err := s.FindAds(ctx, adscan.AdFilter{ID: &id, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(ads) == 0 {
		return nil, adscan.Errorf(adscan.ENOTFOUND, "ad not found")
	}
	return ads[0], nil
}

// FindAds retrieves ads matching the filter, most recently found first.
func (s *AdService) FindAds(ctx context.Context, filter adscan.AdFilter) ([]*adscan.Ad, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + adColumns + " FROM ads")
	appendAdFilter(&query, &args, filter)
	query.WriteString(" ORDER BY found_ts DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ads []*adscan.Ad
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}
	return ads, rows.Err()
}

// CountAds returns the number of ads matching the filter. Pagination
// fields are ignored.
func (s *AdService) CountAds(ctx context.Context, filter adscan.AdFilter) (int, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT COUNT(*) FROM ads")
	appendAdFilter(&query, &args, filter)

	var n int
	if err := s.db.QueryRowContext(ctx, query.String(), args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteAdsByPage removes all ads found on pageURL.
func (s *AdService) DeleteAdsByPage(ctx context.Context, pageURL string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM ads WHERE page_url = ?", pageURL)
	return err
}

func scanAd(rows *sql.Rows) (*adscan.Ad, error) {
	var ad adscan.Ad
	var id, contentType, data string
	var resolved, pageURL, pageTitle, errs sql.NullString

	if err := rows.Scan(&id, &ad.Title, &ad.TargetURL, &resolved, &contentType, &data,
		&pageURL, &pageTitle, &ad.Attempts, &ad.VisitedTs, &ad.AttemptedTs, &ad.FoundTs, &errs); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(data), &ad.ContentData); err != nil {
		return nil, fmt.Errorf("failed to decode content data: %w", err)
	}
	decoded, err := decodeErrors(errs)
	if err != nil {
		return nil, err
	}

	ad.ID = &id
	ad.ContentType = adscan.ContentType(contentType)
	ad.ResolvedTargetURL = stringPtr(resolved)
	ad.PageURL = stringPtr(pageURL)
	ad.PageTitle = stringPtr(pageTitle)
	ad.Errors = decoded
	return &ad, nil
}
