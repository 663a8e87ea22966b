package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE projects (
				id BIGINT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				path VARCHAR(1024) NOT NULL UNIQUE
			);

			CREATE TABLE artifact_types (
				id BIGINT PRIMARY KEY,
				name VARCHAR(255) NOT NULL UNIQUE,
				prefix VARCHAR(32) NOT NULL DEFAULT '',
				base_type VARCHAR(64) NOT NULL
			);

			CREATE TABLE property_types (
				id BIGINT PRIMARY KEY,
				name VARCHAR(255) NOT NULL UNIQUE,
				primitive_type VARCHAR(16) NOT NULL CHECK (primitive_type IN ('text', 'number', 'date', 'choice', 'user')),
				is_required BOOLEAN NOT NULL DEFAULT false,
				is_validated BOOLEAN NOT NULL DEFAULT false,
				min_number NUMERIC,
				max_number NUMERIC,
				decimal_places INT,
				min_date DATE,
				max_date DATE,
				is_multiple_allowed BOOLEAN NOT NULL DEFAULT false
			);

			CREATE TABLE property_valid_values (
				id BIGINT PRIMARY KEY,
				property_type_id BIGINT NOT NULL REFERENCES property_types(id) ON DELETE CASCADE,
				value VARCHAR(1024) NOT NULL,
				position INT NOT NULL DEFAULT 0
			);

			CREATE INDEX idx_property_valid_values_property_type_id ON property_valid_values(property_type_id);

			CREATE TABLE artifact_type_property_types (
				artifact_type_id BIGINT NOT NULL REFERENCES artifact_types(id) ON DELETE CASCADE,
				property_type_id BIGINT NOT NULL REFERENCES property_types(id) ON DELETE CASCADE,
				PRIMARY KEY (artifact_type_id, property_type_id)
			);

			CREATE TABLE users (
				id BIGINT PRIMARY KEY,
				name VARCHAR(255) NOT NULL UNIQUE,
				display_name VARCHAR(255) NOT NULL DEFAULT ''
			);

			CREATE TABLE groups (
				id BIGINT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				project_id BIGINT REFERENCES projects(id) ON DELETE CASCADE
			);

			CREATE INDEX idx_groups_name ON groups(name);
		`,
		2: `
			CREATE TABLE workflows (
				id BIGSERIAL PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				definition JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE UNIQUE INDEX idx_workflows_live_name ON workflows(name) WHERE deleted_at IS NULL;
			CREATE INDEX idx_workflows_deleted_at ON workflows(deleted_at);
		`,
	}
}
