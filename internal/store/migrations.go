package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per detection run between start and stop
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			facing TEXT NOT NULL CHECK(facing IN ('user', 'environment')),
			device_id INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Emotion readings table - smoothed classifier output sampled during a session
		`CREATE TABLE IF NOT EXISTS emotion_readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			emotion TEXT NOT NULL CHECK(emotion IN ('happy', 'sad', 'angry', 'neutral')),
			confidence REAL NOT NULL,
			happy REAL NOT NULL,
			sad REAL NOT NULL,
			angry REAL NOT NULL,
			neutral REAL NOT NULL,
			recorded_at DATETIME NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_emotion_readings_session_id ON emotion_readings(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
