package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create task tables",
		SQL: `
			CREATE TABLE task_lists (
				id           TEXT PRIMARY KEY,
				user_id      TEXT NOT NULL,
				title        TEXT NOT NULL,
				description  TEXT NOT NULL DEFAULT '',
				color        TEXT NOT NULL DEFAULT '',
				is_archived  INTEGER NOT NULL DEFAULT 0,
				created_at   TEXT NOT NULL,
				updated_at   TEXT NOT NULL
			);

			CREATE INDEX idx_task_lists_user ON task_lists (user_id);

			CREATE TABLE tasks (
				id            TEXT PRIMARY KEY,
				user_id       TEXT NOT NULL,
				title         TEXT NOT NULL,
				description   TEXT NOT NULL DEFAULT '',
				is_completed  INTEGER NOT NULL DEFAULT 0,
				is_important  INTEGER NOT NULL DEFAULT 0,
				task_list_id  TEXT REFERENCES task_lists(id) ON DELETE SET NULL,
				due_at        TEXT,
				completed_at  TEXT,
				created_at    TEXT NOT NULL,
				updated_at    TEXT NOT NULL
			);

			CREATE INDEX idx_tasks_user ON tasks (user_id);
			CREATE INDEX idx_tasks_list ON tasks (task_list_id);
		`,
	},
	{
		Version: 2,
		Name:    "create note tables",
		SQL: `
			CREATE TABLE note_lists (
				id           TEXT PRIMARY KEY,
				user_id      TEXT NOT NULL,
				title        TEXT NOT NULL,
				description  TEXT NOT NULL DEFAULT '',
				color        TEXT NOT NULL DEFAULT '',
				is_archived  INTEGER NOT NULL DEFAULT 0,
				created_at   TEXT NOT NULL,
				updated_at   TEXT NOT NULL
			);

			CREATE INDEX idx_note_lists_user ON note_lists (user_id);

			CREATE TABLE notes (
				id            TEXT PRIMARY KEY,
				user_id       TEXT NOT NULL,
				title         TEXT NOT NULL,
				content       TEXT NOT NULL DEFAULT '',
				is_pinned     INTEGER NOT NULL DEFAULT 0,
				note_list_id  TEXT NOT NULL REFERENCES note_lists(id) ON DELETE CASCADE,
				created_at    TEXT NOT NULL,
				updated_at    TEXT NOT NULL
			);

			CREATE INDEX idx_notes_user ON notes (user_id);
			CREATE INDEX idx_notes_list ON notes (note_list_id);
		`,
	},
	{
		Version: 3,
		Name:    "add task focus date",
		SQL: `
			ALTER TABLE tasks ADD COLUMN focus_date TEXT;

			CREATE INDEX idx_tasks_focus ON tasks (user_id, focus_date);
		`,
	},
}
