// Package model defines the domain data structures shared by the core and the
// front ends: download requests, progress events, outcomes and task snapshots.
package model
