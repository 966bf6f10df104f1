package models

import "github.com/google/uuid"

// ensureID assigns a fresh id when the caller left it empty. Postgres has a
// gen_random_uuid() default but sqlite does not.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
