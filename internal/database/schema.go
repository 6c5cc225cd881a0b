package database

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    password TEXT NOT NULL,
    username TEXT UNIQUE NOT NULL,
    is_guest BOOLEAN NOT NULL DEFAULT FALSE,
    total_games_played INTEGER NOT NULL DEFAULT 0,
    total_wins INTEGER NOT NULL DEFAULT 0,
    total_losses INTEGER NOT NULL DEFAULT 0,
    highest_score INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS game_history (
    id UUID PRIMARY KEY,
    user_id UUID REFERENCES users(id) ON DELETE SET NULL,
    username TEXT NOT NULL,
    game_mode TEXT NOT NULL,
    difficulty TEXT NOT NULL,
    score INTEGER NOT NULL,
    time_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
    hints_used INTEGER NOT NULL DEFAULT 0,
    won BOOLEAN NOT NULL DEFAULT FALSE,
    room_code TEXT,
    multiplayer BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_game_history_score ON game_history(score DESC, time_seconds ASC);
CREATE INDEX IF NOT EXISTS idx_game_history_difficulty ON game_history(difficulty);
`
