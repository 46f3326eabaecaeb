// Package models contains the GORM persistence models of the ledger. Domain
// entities carry no ORM tags; each model maps one table and converts to and
// from its entity with ToDomain and FromDomain.
//
// Entity tables (customers, accounts, fixed_deposits, recurring_deposits,
// loans) carry a version column for optimistic locking. History tables
// (account_transactions, fd_transactions, rd_transactions,
// loan_transactions, interest_calculations) are append-only.
package models
