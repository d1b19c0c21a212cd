package store

type migration struct {
	id   int
	name string
	sql  string
}

var migrations = []migration{
	{
		id:   1,
		name: "initial_schema",
		sql: `
			-- World saves: one row per save, keyed by an opaque id.
			-- record_blob is the version-2 (or legacy version-1) encoded
			-- save buffer produced by worldgen.Encode.
			CREATE TABLE world_saves (
				id TEXT PRIMARY KEY,
				seed INTEGER NOT NULL,
				width INTEGER NOT NULL,
				height INTEGER NOT NULL,
				record_blob BLOB NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_world_saves_created ON world_saves(created_at);
		`,
	},
}
