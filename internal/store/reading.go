package store

import (
	"database/sql"
	"time"
)

// Reading is a smoothed emotion result sampled during a session.
type Reading struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Emotion    string    `json:"emotion"`
	Confidence float64   `json:"confidence"`
	Happy      float64   `json:"happy"`
	Sad        float64   `json:"sad"`
	Angry      float64   `json:"angry"`
	Neutral    float64   `json:"neutral"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ReadingRepository stores emotion readings.
type ReadingRepository struct {
	db *sql.DB
}

// Readings returns the reading repository for this store.
func (s *Store) Readings() *ReadingRepository {
	return &ReadingRepository{db: s.db}
}

// Add inserts a reading and sets its ID. The session must exist.
func (r *ReadingRepository) Add(rd *Reading) error {
	if rd.RecordedAt.IsZero() {
		rd.RecordedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO emotion_readings
		 (session_id, emotion, confidence, happy, sad, angry, neutral, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rd.SessionID, rd.Emotion, rd.Confidence, rd.Happy, rd.Sad, rd.Angry, rd.Neutral, rd.RecordedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rd.ID = id
	return nil
}

// ListBySession returns a session's readings in recording order.
func (r *ReadingRepository) ListBySession(sessionID string) ([]*Reading, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, emotion, confidence, happy, sad, angry, neutral, recorded_at
		 FROM emotion_readings WHERE session_id = ? ORDER BY recorded_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*Reading
	for rows.Next() {
		rd := &Reading{}
		if err := rows.Scan(&rd.ID, &rd.SessionID, &rd.Emotion, &rd.Confidence,
			&rd.Happy, &rd.Sad, &rd.Angry, &rd.Neutral, &rd.RecordedAt); err != nil {
			return nil, err
		}
		readings = append(readings, rd)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return readings, nil
}

// CountByEmotion returns how many readings of each emotion a session has.
func (r *ReadingRepository) CountByEmotion(sessionID string) (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT emotion, COUNT(*) FROM emotion_readings WHERE session_id = ? GROUP BY emotion`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var emotion string
		var n int
		if err := rows.Scan(&emotion, &n); err != nil {
			return nil, err
		}
		counts[emotion] = n
	}

	return counts, rows.Err()
}
