package validation

import "github.com/almflow/workflows/pkg/models"

func (c *checker) checkEvents(definition *models.ImportWorkflow) error {
	for _, event := range definition.TransitionEvents {
		if event == nil {
			continue
		}

		c.checkPermissionGroups(event.PermissionGroups)

		if err := c.checkTriggers(event.Triggers); err != nil {
			return err
		}
	}

	for _, event := range definition.PropertyChangeEvents {
		if event == nil {
			continue
		}

		c.checkPropertyChangeEvent(event)

		if err := c.checkTriggers(event.Triggers); err != nil {
			return err
		}
	}

	for _, event := range definition.NewArtifactEvents {
		if event == nil {
			continue
		}

		if err := c.checkTriggers(event.Triggers); err != nil {
			return err
		}
	}

	return nil
}

func (c *checker) checkPermissionGroups(groups []*models.ImportGroup) {
	for _, ref := range groups {
		if ref == nil {
			continue
		}

		if c.ids.trusts(ref.ID) {
			group, ok := c.result.groupByID(*ref.ID, instanceScope)
			if !ok {
				c.result.add(ref, InstanceGroupNotFoundByID)
				ref.Name = ""

				continue
			}

			ref.Name = group.Name
		}

		group, ok := c.result.groupByName(ref.Name, instanceScope)
		if !ok {
			c.result.add(ref, InstanceGroupNotFoundByName)

			continue
		}

		ref.ID = ptr(group.ID)
	}
}

func (c *checker) checkPropertyChangeEvent(event *models.ImportPropertyChangeEvent) {
	property, outcome := c.linkPropertyType(&event.PropertyRef)

	switch outcome {
	case missingByID:
		c.result.add(event, PropertyChangeEventPropertyTypeNotFoundByID)

		return
	case missingByName:
		c.result.add(event, PropertyChangeEventPropertyTypeNotFoundByName)

		return
	case linked:
	}

	if !c.result.isAssociated(property) {
		c.result.add(event, PropertyChangeEventPropertyTypeNotAssociated)
	}
}

func (c *checker) checkTriggers(triggers []*models.ImportTrigger) error {
	actions := actionChecker{checker: c}

	for _, trigger := range triggers {
		if trigger == nil {
			continue
		}

		// Conditions only name states of this workflow; there is nothing to resolve.
		if trigger.Action == nil {
			continue
		}

		if err := trigger.Action.Accept(actions); err != nil {
			return err
		}
	}

	return nil
}
