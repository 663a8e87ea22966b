package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/almflow/workflows/pkg/models"
	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted absolute date format for date property values.
const DateLayout = "2006-01-02"

// invariantNumber accepts optional sign, optional thousands groups and a '.' decimal point.
var invariantNumber = regexp.MustCompile(`^[+-]?(?:\d{1,3}(?:,\d{3})+|\d*)(?:\.\d*)?$`)

// checkPropertyValue applies the value rules of the property's primitive type to a
// property-change action. Each rule exits early on its first finding.
func (c *checker) checkPropertyValue(action *models.PropertyChangeAction, property *models.PropertyType) error {
	if property == nil {
		return ErrNilPropertyType
	}

	switch property.PrimitiveType {
	case models.PrimitiveTypeText:
		c.checkTextValue(action, property)
	case models.PrimitiveTypeNumber:
		c.checkNumberValue(action, property)
	case models.PrimitiveTypeDate:
		c.checkDateValue(action, property)
	case models.PrimitiveTypeChoice:
		c.checkChoiceValue(action, property)
	case models.PrimitiveTypeUser:
		c.checkUserValue(action, property)
	default:
		return fmt.Errorf("%w: %q on property type %d", ErrUnknownPrimitiveType, property.PrimitiveType, property.ID)
	}

	return nil
}

// checkScalarPreconditions covers the rules shared by text, number and date properties.
// It reports whether the remaining type-specific rules should run.
func (c *checker) checkScalarPreconditions(action *models.PropertyChangeAction, property *models.PropertyType) bool {
	if len(action.ValidValues) > 0 {
		c.result.add(action, PropertyChangeActionValidValuesNotApplicable)

		return false
	}

	if action.HasUsersGroups() {
		c.result.add(action, PropertyChangeActionUsersGroupsNotApplicable)

		return false
	}

	if property.IsRequired && isBlank(action.PropertyValue) {
		c.result.add(action, PropertyChangeActionRequiredPropertyValueEmpty)

		return false
	}

	return true
}

func (c *checker) checkTextValue(action *models.PropertyChangeAction, property *models.PropertyType) {
	c.checkScalarPreconditions(action, property)
}

func (c *checker) checkNumberValue(action *models.PropertyChangeAction, property *models.PropertyType) {
	if !c.checkScalarPreconditions(action, property) || isBlank(action.PropertyValue) {
		return
	}

	value, ok := parseInvariantDecimal(action.PropertyValue)
	if !ok {
		c.result.add(action, InvalidNumberFormat)

		return
	}

	if !property.IsValidated {
		return
	}

	if property.DecimalPlaces != nil && decimalPlaces(value) > *property.DecimalPlaces {
		c.result.add(action, InvalidNumberDecimalPlaces)

		return
	}

	if (property.MinNumber != nil && value.LessThan(*property.MinNumber)) ||
		(property.MaxNumber != nil && value.GreaterThan(*property.MaxNumber)) {
		c.result.add(action, NumberOutOfRange)
	}
}

func (c *checker) checkDateValue(action *models.PropertyChangeAction, property *models.PropertyType) {
	if !c.checkScalarPreconditions(action, property) || isBlank(action.PropertyValue) {
		return
	}

	text := strings.TrimSpace(action.PropertyValue)

	// A plain integer is an offset in days from the day the action runs.
	if _, err := strconv.Atoi(text); err == nil {
		return
	}

	value, err := time.Parse(DateLayout, text)
	if err != nil {
		c.result.add(action, InvalidDateFormat)

		return
	}

	if !property.IsValidated {
		return
	}

	day := truncateToDay(value)

	if (property.MinDate != nil && day.Before(truncateToDay(*property.MinDate))) ||
		(property.MaxDate != nil && day.After(truncateToDay(*property.MaxDate))) {
		c.result.add(action, DateOutOfRange)
	}
}

func (c *checker) checkChoiceValue(action *models.PropertyChangeAction, property *models.PropertyType) {
	if action.HasUsersGroups() {
		c.result.add(action, PropertyChangeActionUsersGroupsNotApplicable)

		return
	}

	if property.IsRequired && isBlank(action.PropertyValue) && len(action.ValidValues) == 0 {
		c.result.add(action, PropertyChangeActionRequiredPropertyValueEmpty)

		return
	}

	if len(action.ValidValues) > 1 && !property.IsMultipleAllowed {
		c.result.add(action, ChoicePropertyMultipleValidValuesNotAllowed)

		return
	}

	if property.IsValidated && len(action.ValidValues) == 0 && !isBlank(action.PropertyValue) {
		c.result.add(action, ChoiceValueSpecifiedAsNotValidated)

		return
	}

	for _, selected := range action.ValidValues {
		if selected == nil {
			continue
		}

		if c.ids.trusts(selected.ID) {
			value, ok := property.ValidValueByID(*selected.ID)
			if !ok {
				c.result.add(selected, ValidValueNotFoundByID)

				return
			}

			selected.Value = value.Value
		}

		value, ok := property.ValidValueByText(selected.Value)
		if !ok {
			c.result.add(selected, ValidValueNotFoundByValue)

			continue
		}

		selected.ID = ptr(value.ID)
	}
}

func (c *checker) checkUserValue(action *models.PropertyChangeAction, property *models.PropertyType) {
	if len(action.ValidValues) > 0 {
		c.result.add(action, PropertyChangeActionValidValuesNotApplicable)

		return
	}

	if action.PropertyValue != "" {
		c.result.add(action, PropertyChangeActionUserPropertyValueNotApplicable)

		return
	}

	if property.IsRequired && !action.HasUsersGroups() {
		c.result.add(action, PropertyChangeActionRequiredPropertyValueEmpty)

		return
	}

	if action.UsersGroups == nil {
		return
	}

	for _, entry := range action.UsersGroups.UsersGroups {
		if entry == nil {
			continue
		}

		if entry.IsGroup {
			c.checkGroupEntry(entry)
		} else {
			c.checkUserEntry(entry)
		}
	}
}

func (c *checker) checkGroupEntry(entry *models.ImportUserGroup) {
	// ProjectByPathNotFound has been reported for this entry.
	if _, ok := c.unlinkedGroupProjects[entry]; ok {
		return
	}

	scope := scopeOf(entry.GroupProjectID)

	if c.ids.trusts(entry.ID) {
		group, ok := c.result.groupByID(*entry.ID, scope)
		if !ok {
			c.result.add(entry, GroupNotFoundByID)
			entry.Name = ""

			return
		}

		entry.Name = group.Name
	}

	group, ok := c.result.groupByName(entry.Name, scope)
	if !ok {
		c.result.add(entry, GroupNotFoundByName)

		return
	}

	entry.ID = ptr(group.ID)
}

func (c *checker) checkUserEntry(entry *models.ImportUserGroup) {
	if c.ids.trusts(entry.ID) {
		user, ok := c.result.usersByID[*entry.ID]
		if !ok {
			c.result.add(entry, UserNotFoundByID)
			entry.Name = ""

			return
		}

		entry.Name = user.Name
	}

	user, ok := c.result.usersByName[entry.Name]
	if !ok {
		c.result.add(entry, UserNotFoundByName)

		return
	}

	entry.ID = ptr(user.ID)
}

func parseInvariantDecimal(text string) (decimal.Decimal, bool) {
	text = strings.TrimSpace(text)
	if !invariantNumber.MatchString(text) || !strings.ContainsAny(text, "0123456789") {
		return decimal.Zero, false
	}

	text = strings.TrimSuffix(strings.ReplaceAll(text, ",", ""), ".")

	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}

	return value, true
}

// decimalPlaces counts the digits after the decimal point as written, trailing zeros included.
func decimalPlaces(value decimal.Decimal) int {
	if exponent := value.Exponent(); exponent < 0 {
		return int(-exponent)
	}

	return 0
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
