package validation

import "github.com/almflow/workflows/pkg/models"

// actionChecker validates trigger actions. It is the only models.ActionVisitor in the package.
type actionChecker struct {
	*checker
}

var _ models.ActionVisitor = actionChecker{}

func (c actionChecker) VisitEmailNotification(action *models.EmailNotificationAction) error {
	if c.ids.trusts(action.PropertyID) {
		property, ok := c.result.propertyTypesByID[*action.PropertyID]
		if !ok {
			c.result.add(action, EmailNotificationActionPropertyTypeNotFoundByID)
			action.PropertyName = ""

			return nil
		}

		action.PropertyName = property.Name
	}

	// Notifications to explicit addresses only.
	if action.PropertyName == "" {
		return nil
	}

	property, ok := c.result.propertyTypesByName[action.PropertyName]
	if !ok {
		c.result.add(action, EmailNotificationActionPropertyTypeNotFoundByName)

		return nil
	}

	action.PropertyID = ptr(property.ID)

	if property.PrimitiveType != models.PrimitiveTypeText && property.PrimitiveType != models.PrimitiveTypeUser {
		c.result.add(action, EmailNotificationActionUnacceptablePropertyType)
	}

	if !c.result.isAssociated(property) {
		c.result.add(action, EmailNotificationActionPropertyTypeNotAssociated)
	}

	return nil
}

func (c actionChecker) VisitPropertyChange(action *models.PropertyChangeAction) error {
	property, outcome := c.linkPropertyType(&action.PropertyRef)

	switch outcome {
	case missingByID:
		c.result.add(action, PropertyChangeActionPropertyTypeNotFoundByID)

		return nil
	case missingByName:
		c.result.add(action, PropertyChangeActionPropertyTypeNotFoundByName)

		return nil
	case linked:
	}

	if !c.result.isAssociated(property) {
		c.result.add(action, PropertyChangeActionPropertyTypeNotAssociated)

		return nil
	}

	return c.checkPropertyValue(action, property)
}

func (c actionChecker) VisitGenerateChildren(action *models.GenerateChildrenAction) error {
	if c.ids.trusts(action.ArtifactTypeID) {
		artifactType, ok := c.result.artifactTypesByID[*action.ArtifactTypeID]
		if !ok {
			c.result.add(action, GenerateChildArtifactsActionArtifactTypeNotFoundByID)
			action.ArtifactTypeName = ""

			return nil
		}

		action.ArtifactTypeName = artifactType.Name
	}

	artifactType, ok := c.result.artifactTypesByName[action.ArtifactTypeName]
	if !ok {
		c.result.add(action, GenerateChildArtifactsActionArtifactTypeNotFoundByName)

		return nil
	}

	action.ArtifactTypeID = ptr(artifactType.ID)

	return nil
}

func (c actionChecker) VisitGenerateUserStories(*models.GenerateUserStoriesAction) error {
	return nil
}

func (c actionChecker) VisitGenerateTestCases(*models.GenerateTestCasesAction) error {
	return nil
}

func (c actionChecker) VisitWebhook(*models.WebhookAction) error {
	return nil
}

type linkOutcome int

const (
	linked linkOutcome = iota
	missingByID
	missingByName
)

// linkPropertyType resolves a property reference, synthetic properties first, and writes
// the resolved id and name back onto it. A failed id lookup clears the name.
func (c *checker) linkPropertyType(ref *models.PropertyRef) (*models.PropertyType, linkOutcome) {
	if ref.IsEmpty() {
		return nil, missingByName
	}

	if c.ids.trusts(ref.PropertyID) {
		property, ok := c.result.propertyTypeByID(*ref.PropertyID)
		if !ok {
			ref.PropertyName = ""

			return nil, missingByID
		}

		ref.PropertyName = property.Name

		return property, linked
	}

	property, ok := c.result.propertyTypeByName(ref.PropertyName)
	if !ok {
		return nil, missingByName
	}

	ref.PropertyID = ptr(property.ID)

	return property, linked
}
