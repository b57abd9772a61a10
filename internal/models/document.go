package models

import (
	"encoding/json"
	"time"
)

// ReminderDocument is a reminder document as a storage backend sees it:
// the JSON body plus the server-assigned write time.
type ReminderDocument struct {
	Data      json.RawMessage
	UpdatedAt time.Time
}
