package sqlite

// Timestamps are unix milliseconds, 0 when unset; created is written on insert only.
// References are not enforced: an item may point at a seller or location that no longer exists.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS locations (
	id        TEXT PRIMARY KEY,
	parent_id TEXT NOT NULL DEFAULT '',
	slug      TEXT NOT NULL,
	lat       REAL,
	lon       REAL,
	created   INTEGER NOT NULL DEFAULT 0,
	modified  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS categories (
	id        TEXT PRIMARY KEY,
	parent_id TEXT NOT NULL DEFAULT '',
	slug      TEXT NOT NULL,
	created   INTEGER NOT NULL DEFAULT 0,
	modified  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS items (
	id          TEXT PRIMARY KEY,
	slug        TEXT NOT NULL,
	seller_id   TEXT NOT NULL DEFAULT '',
	location_id TEXT NOT NULL DEFAULT '',
	price       INTEGER NOT NULL DEFAULT 0,
	quantity    INTEGER NOT NULL DEFAULT 0,
	published   INTEGER NOT NULL DEFAULT 0,
	created     INTEGER NOT NULL DEFAULT 0,
	modified    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS items_seller ON items (seller_id);
CREATE INDEX IF NOT EXISTS items_location ON items (location_id);

CREATE TABLE IF NOT EXISTS item_categories (
	item_id     TEXT NOT NULL,
	category_id TEXT NOT NULL,
	PRIMARY KEY (item_id, category_id)
);

CREATE TABLE IF NOT EXISTS reservations (
	id       TEXT PRIMARY KEY,
	item_id  TEXT NOT NULL,
	quantity INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS reservations_item ON reservations (item_id);

CREATE TABLE IF NOT EXISTS localized_texts (
	owner_type TEXT NOT NULL,
	owner_id   TEXT NOT NULL,
	attr       TEXT NOT NULL,
	locale     TEXT NOT NULL,
	value      TEXT NOT NULL,
	PRIMARY KEY (owner_type, owner_id, attr, locale)
);
`
