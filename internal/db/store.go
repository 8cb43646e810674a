// exposes the Postgres-backed timings cache
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/athan/internal/model"
	"github.com/Nixie-Tech-LLC/athan/internal/timings"
)

// TimingsStore keeps the single cached record in row slot = 1.
type TimingsStore struct {
	db *sqlx.DB
}

// compile-time check that TimingsStore implements timings.Store
var _ timings.Store = (*TimingsStore)(nil)

func NewTimingsStore(conn *sqlx.DB) *TimingsStore {
	return &TimingsStore{db: conn}
}

type storedRow struct {
	Name        string    `db:"name"`
	Admin       string    `db:"admin"`
	Country     string    `db:"country"`
	Latitude    float64   `db:"latitude"`
	Longitude   float64   `db:"longitude"`
	Items       []byte    `db:"items"`
	LastUpdated time.Time `db:"last_updated"`
}

func (s *TimingsStore) Load(ctx context.Context) (*model.StoredTimings, error) {
	var row storedRow
	const q = `
	SELECT name, admin, country, latitude, longitude, items, last_updated
	  FROM stored_timings
	 WHERE slot = 1;`
	if err := s.db.GetContext(ctx, &row, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Error().Err(err).Msg("LoadStoredTimings failed")
		return nil, err
	}

	var items model.RawTiming
	if err := json.Unmarshal(row.Items, &items); err != nil {
		log.Warn().Err(err).Msg("discarding unreadable stored timings")
		return nil, nil
	}

	return &model.StoredTimings{
		Location: model.Location{
			Name:      row.Name,
			Admin:     row.Admin,
			Country:   row.Country,
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
		},
		Items:       items,
		LastUpdated: row.LastUpdated,
	}, nil
}

func (s *TimingsStore) Save(ctx context.Context, st model.StoredTimings) error {
	items, err := json.Marshal(st.Items)
	if err != nil {
		return fmt.Errorf("failed to encode timings: %w", err)
	}

	const q = `
	INSERT INTO stored_timings (slot, name, admin, country, latitude, longitude, items, last_updated)
	VALUES (1, $1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (slot) DO UPDATE SET
	  name = EXCLUDED.name,
	  admin = EXCLUDED.admin,
	  country = EXCLUDED.country,
	  latitude = EXCLUDED.latitude,
	  longitude = EXCLUDED.longitude,
	  items = EXCLUDED.items,
	  last_updated = EXCLUDED.last_updated;`
	_, err = s.db.ExecContext(ctx, q,
		st.Location.Name, st.Location.Admin, st.Location.Country,
		st.Location.Latitude, st.Location.Longitude,
		items, st.LastUpdated)
	if err != nil {
		log.Error().Err(err).Str("location", st.Location.ID()).Msg("SaveStoredTimings failed")
	}
	return err
}

func (s *TimingsStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM stored_timings WHERE slot = 1;`)
	if err != nil {
		log.Error().Err(err).Msg("ClearStoredTimings failed")
	}
	return err
}
