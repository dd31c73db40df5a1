package core

import "listcore/pkg/domain"

type (
	Record          = domain.Record
	Draft           = domain.Draft
	Snapshot        = domain.Snapshot
	Query           = domain.Query
	StatusFilter    = domain.StatusFilter
	SortKey         = domain.SortKey
	SortOrder       = domain.SortOrder
	Priority        = domain.Priority
	ValidationError = domain.ValidationError
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore
)

// Project aliases the pure domain projection.
var Project = domain.Project

const (
	StatusAll    = domain.StatusAll
	StatusActive = domain.StatusActive
	StatusDone   = domain.StatusDone
)

const (
	SortNone      = domain.SortNone
	SortTitle     = domain.SortTitle
	SortCreatedAt = domain.SortCreatedAt
	SortDueAt     = domain.SortDueAt
	SortPriority  = domain.SortPriority
)

const (
	OrderAsc  = domain.OrderAsc
	OrderDesc = domain.OrderDesc
)

const (
	PriorityNone   = domain.PriorityNone
	PriorityLow    = domain.PriorityLow
	PriorityMedium = domain.PriorityMedium
	PriorityHigh   = domain.PriorityHigh
)
