// Package commands defines the archivectl admin CLI.
//
// Commands
//
//   - seed              Create tables and seed system data (admin, jobs, media types)
//   - wipe              Drop every archive table (requires --yes)
//   - create-admin      Create an additional admin account
//   - migrate-metadata  Backfill image metadata from the storage provider
//
// The root command loads .env and opens the database connection before any
// subcommand runs, so handlers share one pool and one environment.
package commands
