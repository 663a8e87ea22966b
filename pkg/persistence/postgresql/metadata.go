package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/almflow/workflows/pkg/models"
	"github.com/shopspring/decimal"
)

// MetadataRepository loads the standard artifact and property type catalog.
type MetadataRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewMetadataRepository(db *sql.DB, logger *slog.Logger) *MetadataRepository {
	return &MetadataRepository{db: db, logger: logger}
}

// StandardTypes loads the whole catalog, including artifact types that cannot take part in
// workflows.
func (r *MetadataRepository) StandardTypes(ctx context.Context) (*models.StandardTypes, error) {
	artifactTypes, err := r.artifactTypes(ctx)
	if err != nil {
		return nil, err
	}

	propertyTypes, err := r.propertyTypes(ctx)
	if err != nil {
		return nil, err
	}

	return &models.StandardTypes{
		ArtifactTypes: artifactTypes,
		PropertyTypes: propertyTypes,
	}, nil
}

// SaveStandardTypes inserts or replaces every artifact type, property type and valid value
// in the catalog.
func (r *MetadataRepository) SaveStandardTypes(ctx context.Context, types *models.StandardTypes) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollback(ctx, r.logger, tx)

	for _, property := range types.PropertyTypes {
		err = savePropertyType(ctx, tx, property)
		if err != nil {
			return err
		}
	}

	for _, artifactType := range types.ArtifactTypes {
		err = saveArtifactType(ctx, tx, artifactType)
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *MetadataRepository) artifactTypes(ctx context.Context) ([]*models.ArtifactType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, prefix, base_type FROM artifact_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifact types: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	artifactTypes := make([]*models.ArtifactType, 0)
	byID := make(map[int64]*models.ArtifactType)

	for rows.Next() {
		var artifactType models.ArtifactType

		err := rows.Scan(&artifactType.ID, &artifactType.Name, &artifactType.Prefix, &artifactType.BaseType)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artifact type: %w", err)
		}

		artifactTypes = append(artifactTypes, &artifactType)
		byID[artifactType.ID] = &artifactType
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating artifact types: %w", err)
	}

	associations, err := r.db.QueryContext(ctx, `
		SELECT artifact_type_id, property_type_id
		FROM artifact_type_property_types
		ORDER BY artifact_type_id, property_type_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifact type properties: %w", err)
	}

	defer closeRows(ctx, r.logger, associations)

	for associations.Next() {
		var artifactTypeID, propertyTypeID int64

		err := associations.Scan(&artifactTypeID, &propertyTypeID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artifact type property: %w", err)
		}

		if artifactType, ok := byID[artifactTypeID]; ok {
			artifactType.PropertyTypeIDs = append(artifactType.PropertyTypeIDs, propertyTypeID)
		}
	}

	err = associations.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating artifact type properties: %w", err)
	}

	return artifactTypes, nil
}

func (r *MetadataRepository) propertyTypes(ctx context.Context) ([]*models.PropertyType, error) {
	query := `
		SELECT
			id
		  , name
		  , primitive_type
		  , is_required
		  , is_validated
		  , min_number
		  , max_number
		  , decimal_places
		  , min_date
		  , max_date
		  , is_multiple_allowed
		FROM property_types
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query property types: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	propertyTypes := make([]*models.PropertyType, 0)
	byID := make(map[int64]*models.PropertyType)

	for rows.Next() {
		var (
			property             models.PropertyType
			minNumber, maxNumber decimal.NullDecimal
			decimalPlaces        sql.NullInt32
			minDate, maxDate     sql.NullTime
		)

		err := rows.Scan(
			&property.ID,
			&property.Name,
			&property.PrimitiveType,
			&property.IsRequired,
			&property.IsValidated,
			&minNumber,
			&maxNumber,
			&decimalPlaces,
			&minDate,
			&maxDate,
			&property.IsMultipleAllowed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property type: %w", err)
		}

		if minNumber.Valid {
			property.MinNumber = &minNumber.Decimal
		}

		if maxNumber.Valid {
			property.MaxNumber = &maxNumber.Decimal
		}

		if decimalPlaces.Valid {
			places := int(decimalPlaces.Int32)
			property.DecimalPlaces = &places
		}

		if minDate.Valid {
			property.MinDate = &minDate.Time
		}

		if maxDate.Valid {
			property.MaxDate = &maxDate.Time
		}

		propertyTypes = append(propertyTypes, &property)
		byID[property.ID] = &property
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating property types: %w", err)
	}

	values, err := r.db.QueryContext(ctx, `
		SELECT id, property_type_id, value
		FROM property_valid_values
		ORDER BY property_type_id, position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query valid values: %w", err)
	}

	defer closeRows(ctx, r.logger, values)

	for values.Next() {
		var (
			value          models.ValidValue
			propertyTypeID int64
		)

		err := values.Scan(&value.ID, &propertyTypeID, &value.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to scan valid value: %w", err)
		}

		if property, ok := byID[propertyTypeID]; ok {
			property.ValidValues = append(property.ValidValues, value)
		}
	}

	err = values.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating valid values: %w", err)
	}

	return propertyTypes, nil
}

func savePropertyType(ctx context.Context, tx *sql.Tx, property *models.PropertyType) error {
	query := `
		INSERT INTO property_types (id, name, primitive_type, is_required, is_validated,
			min_number, max_number, decimal_places, min_date, max_date, is_multiple_allowed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			primitive_type = EXCLUDED.primitive_type,
			is_required = EXCLUDED.is_required,
			is_validated = EXCLUDED.is_validated,
			min_number = EXCLUDED.min_number,
			max_number = EXCLUDED.max_number,
			decimal_places = EXCLUDED.decimal_places,
			min_date = EXCLUDED.min_date,
			max_date = EXCLUDED.max_date,
			is_multiple_allowed = EXCLUDED.is_multiple_allowed
	`

	_, err := tx.ExecContext(ctx, query,
		property.ID,
		property.Name,
		property.PrimitiveType,
		property.IsRequired,
		property.IsValidated,
		nullDecimal(property.MinNumber),
		nullDecimal(property.MaxNumber),
		nullInt(property.DecimalPlaces),
		nullTime(property.MinDate),
		nullTime(property.MaxDate),
		property.IsMultipleAllowed,
	)
	if err != nil {
		return fmt.Errorf("failed to save property type %d: %w", property.ID, err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM property_valid_values WHERE property_type_id = $1`, property.ID)
	if err != nil {
		return fmt.Errorf("failed to delete valid values of property type %d: %w", property.ID, err)
	}

	for position, value := range property.ValidValues {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO property_valid_values (id, property_type_id, value, position) VALUES ($1, $2, $3, $4)`,
			value.ID, property.ID, value.Value, position,
		)
		if err != nil {
			return fmt.Errorf("failed to save valid value %d: %w", value.ID, err)
		}
	}

	return nil
}

func saveArtifactType(ctx context.Context, tx *sql.Tx, artifactType *models.ArtifactType) error {
	query := `
		INSERT INTO artifact_types (id, name, prefix, base_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			prefix = EXCLUDED.prefix,
			base_type = EXCLUDED.base_type
	`

	_, err := tx.ExecContext(ctx, query, artifactType.ID, artifactType.Name, artifactType.Prefix, artifactType.BaseType)
	if err != nil {
		return fmt.Errorf("failed to save artifact type %d: %w", artifactType.ID, err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM artifact_type_property_types WHERE artifact_type_id = $1`, artifactType.ID)
	if err != nil {
		return fmt.Errorf("failed to delete properties of artifact type %d: %w", artifactType.ID, err)
	}

	for _, propertyTypeID := range artifactType.PropertyTypeIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO artifact_type_property_types (artifact_type_id, property_type_id) VALUES ($1, $2)`,
			artifactType.ID, propertyTypeID,
		)
		if err != nil {
			return fmt.Errorf("failed to associate property type %d: %w", propertyTypeID, err)
		}
	}

	return nil
}

func nullDecimal(value *decimal.Decimal) decimal.NullDecimal {
	if value == nil {
		return decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Decimal: *value, Valid: true}
}

func nullInt(value *int) sql.NullInt32 {
	if value == nil {
		return sql.NullInt32{}
	}

	return sql.NullInt32{Int32: int32(*value), Valid: true} //nolint:gosec // decimal places are small
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}

	return sql.NullTime{Time: *value, Valid: true}
}
