// Package domain contains the core entities of the application:
// error records, per-user XP state, daily activity counters, leaderboard
// snapshots and revision audit logs. Entities carry their own validation;
// all mutation of review scheduling state goes through the service layer.
package domain
