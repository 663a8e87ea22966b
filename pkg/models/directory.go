package models

type Project struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// ProjectPath is the result of resolving a project path to its id.
type ProjectPath struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
}

// Group is an instance-level group when ProjectID is nil, otherwise a project group.
type Group struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ProjectID *int64 `json:"project_id,omitempty"`
}

func (g *Group) IsInstanceGroup() bool {
	return g.ProjectID == nil
}
