// Package migrate copies a MySQL publishing database into Postgres.
//
// A run has two phases. Inspect reads the source schema from
// INFORMATION_SCHEMA and produces a Plan: one CREATE TABLE statement per
// table plus row counts. WriteArtifacts stores the plan as
// generated_schema.sql and migration_summary.json so it can be reviewed.
// Apply then creates the tables in Postgres and copies every row with
// INSERT ... ON CONFLICT DO NOTHING, so a partial run can be repeated.
package migrate
