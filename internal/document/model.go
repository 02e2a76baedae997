package document

import "time"

type CV struct {
	ID         int       `db:"id" json:"id"`
	UserID     int       `db:"user_id" json:"user_id"`
	Filename   string    `db:"filename" json:"filename"`
	StorageURL string    `db:"storage_url" json:"storage_url"`
	SizeBytes  int64     `db:"size_bytes" json:"size_bytes"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
