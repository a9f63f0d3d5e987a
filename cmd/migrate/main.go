package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		if err := createFunctions(ctx, conn); err != nil {
			log.Fatalf("Failed to create functions: %v", err)
		}
		fmt.Println("✅ Schema created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`DROP TABLE IF EXISTS messages CASCADE`,
		`DROP TABLE IF EXISTS channels CASCADE`,
		`DROP TABLE IF EXISTS user_career_goals CASCADE`,
		`DROP TABLE IF EXISTS user_skills CASCADE`,
		`DROP TABLE IF EXISTS job_postings CASCADE`,
		`DROP TABLE IF EXISTS occupation_to_skill_relations CASCADE`,
		`DROP TABLE IF EXISTS occupation_hierarchy CASCADE`,
		`DROP TABLE IF EXISTS skill_hierarchy CASCADE`,
		`DROP TABLE IF EXISTS skill_groups CASCADE`,
		`DROP TABLE IF EXISTS occupation_groups CASCADE`,
		`DROP TABLE IF EXISTS skills CASCADE`,
		`DROP TABLE IF EXISTS occupations CASCADE`,
		`DROP TABLE IF EXISTS user_profiles CASCADE`,
		`DROP FUNCTION IF EXISTS match_occupations_for_user(uuid, numeric, integer, text)`,
		`DROP FUNCTION IF EXISTS get_trending_occupations(integer)`,
		`DROP FUNCTION IF EXISTS get_admin_stats()`,
		`DROP FUNCTION IF EXISTS notify_message_insert()`,
	}
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS user_profiles (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			gender TEXT,
			date_of_birth DATE,
			avatar_url TEXT,
			role TEXT NOT NULL DEFAULT 'user',
			current_occupation_id TEXT,
			skill_assessment_completed BOOLEAN NOT NULL DEFAULT false,
			onboarding_completed BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_login TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_profiles_email ON user_profiles (lower(email))`,
		`CREATE INDEX IF NOT EXISTS idx_user_profiles_role ON user_profiles (role)`,

		`CREATE TABLE IF NOT EXISTS occupations (
			csv_id TEXT PRIMARY KEY,
			preferred_label TEXT NOT NULL,
			description TEXT,
			occupation_group_code TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_occupations_label ON occupations (lower(preferred_label))`,

		`CREATE TABLE IF NOT EXISTS skills (
			csv_id TEXT PRIMARY KEY,
			preferred_label TEXT NOT NULL,
			description TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS occupation_groups (
			code TEXT PRIMARY KEY,
			preferred_label TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS skill_groups (
			csv_id TEXT PRIMARY KEY,
			preferred_label TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS skill_hierarchy (
			parent_id TEXT NOT NULL,
			child_id TEXT NOT NULL,
			parent_object_type TEXT NOT NULL,
			child_object_type TEXT NOT NULL,
			PRIMARY KEY (parent_id, child_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_skill_hierarchy_child ON skill_hierarchy (child_id)`,

		`CREATE TABLE IF NOT EXISTS occupation_hierarchy (
			parent_id TEXT NOT NULL,
			child_id TEXT NOT NULL,
			PRIMARY KEY (parent_id, child_id)
		)`,

		`CREATE TABLE IF NOT EXISTS occupation_to_skill_relations (
			occupation_id TEXT NOT NULL REFERENCES occupations(csv_id),
			skill_id TEXT NOT NULL REFERENCES skills(csv_id),
			relation_type TEXT NOT NULL,
			PRIMARY KEY (occupation_id, skill_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_osr_skill ON occupation_to_skill_relations (skill_id)`,

		`CREATE TABLE IF NOT EXISTS user_skills (
			user_id UUID NOT NULL REFERENCES user_profiles(id) ON DELETE CASCADE,
			skill_id TEXT NOT NULL REFERENCES skills(csv_id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, skill_id)
		)`,

		`CREATE TABLE IF NOT EXISTS user_career_goals (
			id BIGSERIAL PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES user_profiles(id) ON DELETE CASCADE,
			target_occupation_id TEXT NOT NULL REFERENCES occupations(csv_id),
			is_primary_goal BOOLEAN NOT NULL DEFAULT false,
			target_timeline TEXT NOT NULL DEFAULT '1 year',
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_goals_user_status ON user_career_goals (user_id, status)`,

		`CREATE TABLE IF NOT EXISTS job_postings (
			id BIGSERIAL PRIMARY KEY,
			occupation_id TEXT REFERENCES occupations(csv_id),
			title TEXT NOT NULL,
			posted_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_job_postings_occupation ON job_postings (occupation_id)`,

		`CREATE TABLE IF NOT EXISTS channels (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			channel_id UUID NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES user_profiles(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_channel_created ON messages (channel_id, created_at)`,
	}
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec failed: %w", err)
		}
	}
	return nil
}

func createFunctions(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		// Scores every occupation against the user's skill set. Match
		// percent weighs essential skills double.
		`CREATE OR REPLACE FUNCTION match_occupations_for_user(
			p_user UUID,
			p_min_pct NUMERIC DEFAULT 0,
			p_limit INTEGER DEFAULT 20,
			p_occupation TEXT DEFAULT NULL
		) RETURNS TABLE (
			csv_id TEXT,
			match_percent NUMERIC,
			missing_essentials TEXT[]
		) AS $$
			WITH user_skill_set AS (
				SELECT skill_id FROM user_skills WHERE user_id = p_user
			),
			scored AS (
				SELECT r.occupation_id,
					100.0 * SUM(
						CASE WHEN us.skill_id IS NOT NULL THEN
							CASE WHEN r.relation_type = 'essential' THEN 2 ELSE 1 END
						ELSE 0 END
					) / NULLIF(SUM(CASE WHEN r.relation_type = 'essential' THEN 2 ELSE 1 END), 0) AS pct,
					ARRAY_REMOVE(ARRAY_AGG(
						CASE WHEN r.relation_type = 'essential' AND us.skill_id IS NULL
						THEN r.skill_id END
					), NULL) AS missing
				FROM occupation_to_skill_relations r
				LEFT JOIN user_skill_set us ON us.skill_id = r.skill_id
				WHERE p_occupation IS NULL OR r.occupation_id = p_occupation
				GROUP BY r.occupation_id
			)
			SELECT occupation_id, ROUND(pct, 1), missing
			FROM scored
			WHERE pct >= p_min_pct
			ORDER BY pct DESC
			LIMIT p_limit
		$$ LANGUAGE sql STABLE`,

		`CREATE OR REPLACE FUNCTION get_trending_occupations(limit_rows INTEGER DEFAULT 6)
		RETURNS TABLE (
			title TEXT,
			description TEXT,
			trending_score NUMERIC
		) AS $$
			SELECT o.preferred_label,
				COALESCE(o.description, ''),
				COUNT(j.id)::NUMERIC AS score
			FROM occupations o
			JOIN job_postings j ON j.occupation_id = o.csv_id
			WHERE j.posted_at > now() - INTERVAL '30 days'
			GROUP BY o.csv_id
			ORDER BY score DESC
			LIMIT limit_rows
		$$ LANGUAGE sql STABLE`,

		`CREATE OR REPLACE FUNCTION get_admin_stats()
		RETURNS TABLE (
			total_users BIGINT,
			completed_assessments BIGINT,
			completed_onboarding BIGINT,
			today_users BIGINT,
			admin_users BIGINT
		) AS $$
			SELECT COUNT(*),
				COUNT(*) FILTER (WHERE skill_assessment_completed),
				COUNT(*) FILTER (WHERE onboarding_completed),
				COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE),
				COUNT(*) FILTER (WHERE role = 'admin')
			FROM user_profiles
		$$ LANGUAGE sql STABLE`,

		// New messages fan out over LISTEN/NOTIFY so connected stream
		// subscribers see them without polling.
		`CREATE OR REPLACE FUNCTION notify_message_insert() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('community_messages', json_build_object(
				'id', NEW.id,
				'channel_id', NEW.channel_id,
				'user_id', NEW.user_id,
				'content', NEW.content,
				'created_at', NEW.created_at,
				'sender_name', COALESCE((SELECT full_name FROM user_profiles WHERE id = NEW.user_id), ''),
				'sender_avatar', (SELECT avatar_url FROM user_profiles WHERE id = NEW.user_id)
			)::text);
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql`,

		`DROP TRIGGER IF EXISTS messages_notify ON messages`,
		`CREATE TRIGGER messages_notify
			AFTER INSERT ON messages
			FOR EACH ROW EXECUTE FUNCTION notify_message_insert()`,
	}
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec failed: %w", err)
		}
	}
	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`INSERT INTO occupation_groups (code, preferred_label) VALUES
			('25', 'Information and communications technology professionals'),
			('24', 'Business and administration professionals')
		ON CONFLICT (code) DO NOTHING`,

		`INSERT INTO occupations (csv_id, preferred_label, description, occupation_group_code) VALUES
			('occ-software-dev', 'Software developer', 'Designs and builds software systems', '25'),
			('occ-data-analyst', 'Data analyst', 'Interprets data to inform decisions', '25'),
			('occ-project-manager', 'Project manager', 'Plans and oversees projects', '24')
		ON CONFLICT (csv_id) DO NOTHING`,

		`INSERT INTO skills (csv_id, preferred_label, description) VALUES
			('skill-programming', 'Computer programming', 'Writing and maintaining source code'),
			('skill-sql', 'Database queries', 'Querying relational data with SQL'),
			('skill-communication', 'Communication', 'Conveying information clearly'),
			('skill-planning', 'Project planning', 'Scheduling and resource allocation')
		ON CONFLICT (csv_id) DO NOTHING`,

		`INSERT INTO skill_groups (csv_id, preferred_label) VALUES
			('sg-technical', 'Technical skills'),
			('sg-soft', 'Interpersonal skills')
		ON CONFLICT (csv_id) DO NOTHING`,

		`INSERT INTO skill_hierarchy (parent_id, child_id, parent_object_type, child_object_type) VALUES
			('sg-technical', 'skill-programming', 'skillgroup', 'skill'),
			('sg-technical', 'skill-sql', 'skillgroup', 'skill'),
			('sg-soft', 'skill-communication', 'skillgroup', 'skill')
		ON CONFLICT DO NOTHING`,

		`INSERT INTO occupation_to_skill_relations (occupation_id, skill_id, relation_type) VALUES
			('occ-software-dev', 'skill-programming', 'essential'),
			('occ-software-dev', 'skill-sql', 'optional'),
			('occ-software-dev', 'skill-communication', 'optional'),
			('occ-data-analyst', 'skill-sql', 'essential'),
			('occ-data-analyst', 'skill-programming', 'optional'),
			('occ-project-manager', 'skill-planning', 'essential'),
			('occ-project-manager', 'skill-communication', 'essential')
		ON CONFLICT DO NOTHING`,

		`INSERT INTO job_postings (occupation_id, title) VALUES
			('occ-software-dev', 'Backend developer'),
			('occ-software-dev', 'Full-stack developer'),
			('occ-data-analyst', 'Junior data analyst')`,
	}
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec failed: %w", err)
		}
	}
	return nil
}
