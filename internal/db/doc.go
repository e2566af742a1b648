// Package db copies loaded record sets into PostgreSQL.
//
// Connector opens a pgx connection pool, retrying transient connection
// failures. CopyRecords streams a tabload.RecordSet into a table with the
// COPY protocol, optionally creating the table first with one text column
// per header field.
package db
