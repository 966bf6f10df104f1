package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrorDump flattens an error chain for structured logs. Only the fields of
// the store that produced the error are set: Postgres for orders and the
// catalogue, Mongo for hamper drafts.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`

	MongoCode    int    `json:"mongo_code,omitempty"`
	MongoMessage string `json:"mongo_message,omitempty"`
}

// Fields returns the dump as logger fields, skipping empty values.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{"error": d.TopMessage}
	add := func(key string, value any, empty bool) {
		if !empty {
			fields[key] = value
		}
	}
	add("error_code", d.Code, d.Code == "")
	add("error_chain", d.Chain, len(d.Chain) == 0)
	add("pg_code", d.PGCode, d.PGCode == "")
	add("pg_constraint", d.PGConstraint, d.PGConstraint == "")
	add("pg_table", d.PGTable, d.PGTable == "")
	add("pg_detail", d.PGDetail, d.PGDetail == "")
	add("mongo_code", d.MongoCode, d.MongoCode == 0)
	add("mongo_message", d.MongoMessage, d.MongoMessage == "")
	return fields
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	var cmdErr mongo.CommandError
	var writeErr mongo.WriteException
	switch {
	case errors.As(err, &pgxErr):
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGDetail = pgxErr.Detail
	case errors.As(err, &pqErr):
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGDetail = pqErr.Detail
	case errors.As(err, &cmdErr):
		d.MongoCode = int(cmdErr.Code)
		d.MongoMessage = cmdErr.Message
	case errors.As(err, &writeErr):
		if len(writeErr.WriteErrors) > 0 {
			d.MongoCode = writeErr.WriteErrors[0].Code
			d.MongoMessage = writeErr.WriteErrors[0].Message
		} else if writeErr.WriteConcernError != nil {
			d.MongoCode = writeErr.WriteConcernError.Code
			d.MongoMessage = writeErr.WriteConcernError.Message
		}
	}
	return d
}
