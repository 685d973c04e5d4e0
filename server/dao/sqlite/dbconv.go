package sqlite

// Conversion between model fields and the format they are stored in. The *_To
// direction cannot fail; the *_From direction validates what came off disk.

import (
	"encoding/base64"
	"fmt"
	"net/mail"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	"github.com/kyrelle/gridmud/internal/dispatch"
	"github.com/kyrelle/gridmud/server/dao"
)

func convertToDB_UUID(id uuid.UUID) string {
	return id.String()
}

func convertFromDB_UUID(db string, to *uuid.UUID) error {
	parsed, err := uuid.Parse(db)
	if err != nil {
		return fmt.Errorf("%w: %s", dao.ErrDecodingFailure, err.Error())
	}
	*to = parsed
	return nil
}

// Times are stored as Unix nanoseconds; 0 is reserved for the zero time so
// that "never happened" fields survive a round-trip. History order depends on
// created stamps, and second resolution would collide for lines typed close
// together.
func convertToDB_Time(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func convertFromDB_Time(db int64, to *time.Time) error {
	if db == 0 {
		*to = time.Time{}
		return nil
	}
	*to = time.Unix(0, db)
	return nil
}

func convertToDB_Email(email *mail.Address) string {
	if email == nil {
		return ""
	}
	return email.Address
}

func convertFromDB_Email(db string, to **mail.Address) error {
	if db == "" {
		*to = nil
		return nil
	}

	parsed, err := mail.ParseAddress(db)
	if err != nil {
		return fmt.Errorf("%w: %s", dao.ErrDecodingFailure, err.Error())
	}
	*to = parsed
	return nil
}

func convertToDB_Role(r dao.Role) string {
	return r.String()
}

func convertFromDB_Role(db string, to *dao.Role) error {
	parsed, err := dao.ParseRole(db)
	if err != nil {
		return fmt.Errorf("%w: %s", dao.ErrDecodingFailure, err.Error())
	}
	*to = parsed
	return nil
}

func convertToDB_Message(m dispatch.Message) string {
	return base64.StdEncoding.EncodeToString(rezi.EncBinary(m))
}

func convertFromDB_Message(db string, to *dispatch.Message) error {
	data, err := base64.StdEncoding.DecodeString(db)
	if err != nil {
		return fmt.Errorf("%w: %s", dao.ErrDecodingFailure, err.Error())
	}
	_, err = rezi.DecBinary(data, to)
	if err != nil {
		return fmt.Errorf("%w: %s", dao.ErrDecodingFailure, err.Error())
	}
	return nil
}
