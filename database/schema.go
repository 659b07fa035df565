package database

import (
	"context"
	"log"
)

// EnsureSchema creates required extensions and tables if they do not exist.
func EnsureSchema() {
	if Pool == nil {
		return
	}
	ctx := context.Background()

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
		`CREATE TABLE IF NOT EXISTS profiles (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_id UUID,
            email TEXT NOT NULL UNIQUE,
            full_name TEXT,
            phone TEXT,
            company TEXT,
            location TEXT,
            role TEXT NOT NULL DEFAULT 'user', -- 'coach' or 'user'
            blocked BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE TABLE IF NOT EXISTS coach_clients (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            coach_id UUID NULL REFERENCES profiles(id),
            client_id UUID NOT NULL REFERENCES profiles(id),
            status TEXT NOT NULL DEFAULT 'active',
            program_start_date DATE NOT NULL,
            total_weeks INT NOT NULL DEFAULT 16,
            current_week INT NOT NULL DEFAULT 1,
            cycle_number INT NOT NULL DEFAULT 1,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS coach_clients_client_status_idx ON coach_clients(client_id, status)`,
		`CREATE TABLE IF NOT EXISTS strategic_pillars (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            coach_client_id UUID NOT NULL REFERENCES coach_clients(id) ON DELETE CASCADE,
            pillar_type TEXT NOT NULL, -- operations | acquisition | vision
            title TEXT NOT NULL,
            problem TEXT,
            actions JSONB NOT NULL DEFAULT '[]'::jsonb,
            expert_tip TEXT,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            UNIQUE(coach_client_id, pillar_type)
        )`,
		`CREATE TABLE IF NOT EXISTS week_notes (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            coach_client_id UUID NOT NULL REFERENCES coach_clients(id) ON DELETE CASCADE,
            week_number INT NOT NULL,
            comment TEXT,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            UNIQUE(coach_client_id, week_number)
        )`,
		`CREATE TABLE IF NOT EXISTS tasks (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            coach_id UUID NOT NULL,
            client_id UUID NOT NULL,
            week_number INT NOT NULL,
            title TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            priority TEXT NOT NULL DEFAULT 'medium',
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS tasks_client_week_idx ON tasks(client_id, week_number)`,
		`CREATE TABLE IF NOT EXISTS financial_metrics (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            coach_client_id UUID NOT NULL REFERENCES coach_clients(id) ON DELETE CASCADE,
            week_number INT NOT NULL,
            revenue NUMERIC,
            cash_in_bank NUMERIC,
            clients_count NUMERIC,
            collaborators_count NUMERIC,
            conversion_rate NUMERIC,
            metric_date DATE,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            UNIQUE(coach_client_id, week_number)
        )`,
	}

	for _, s := range stmts {
		if _, err := Pool.Exec(ctx, s); err != nil {
			log.Printf("schema ensure error: %v in stmt: %s", err, s)
		}
	}
}
