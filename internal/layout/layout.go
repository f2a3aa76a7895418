// Package layout defines the canonical in-memory model of a building:
// floors, rooms and path nodes, and role-based access rules. A Layout is
// produced once by blueprint analysis and is immutable until the next full
// re-analysis; there are no partial edits.
package layout

// DomainType identifies the kind of institution a layout describes.
type DomainType string

const (
	DomainEducational DomainType = "Educational Institution"
	DomainHospital    DomainType = "Hospital"
)

// RoleType identifies a user role for access evaluation.
type RoleType string

const (
	RoleAdmin   RoleType = "Admin"
	RoleVisitor RoleType = "Visitor"
	RoleDoctor  RoleType = "Doctor"
	RolePatient RoleType = "Patient"
	RoleStaff   RoleType = "Staff"
	RoleStudent RoleType = "Student"
)

// Coordinates places a node on the floor map. Values are integers in [0,100].
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Room is a point in the navigation graph. It is either a destination (an
// actual room) or a path waypoint (corridor, junction, lobby) - there is no
// type discriminator, only the naming convention distinguishes them.
type Room struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Block       string       `json:"block"`
	Floor       int          `json:"floor"`
	Description string       `json:"description"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Floor is one physical level of the building.
type Floor struct {
	Level  int      `json:"level"`
	Blocks []string `json:"blocks,omitempty"`
	Rooms  []Room   `json:"rooms"`
}

// AccessRule restricts a set of roles from an area. Area matches a room name
// or block label loosely - evaluation is by case-insensitive substring
// comparison at query time, not by key.
type AccessRule struct {
	Area            string     `json:"area"`
	RestrictedRoles []RoleType `json:"restrictedRoles"`
	Reason          string     `json:"reason,omitempty"`
}

// Layout is the full structured model of a building derived from a blueprint.
// One layout is active per institution at any time.
type Layout struct {
	BuildingName       string       `json:"buildingName"`
	BuildingType       string       `json:"buildingType"`
	PredictedBlockType string       `json:"predictedBlockType,omitempty"`
	Floors             []Floor      `json:"floors"`
	AccessRules        []AccessRule `json:"accessRules"`
}

// UserSession is the single active user context. Created at role/institution
// selection, the username is attached at login, destroyed at sign-out.
type UserSession struct {
	Domain          DomainType `json:"domain"`
	Role            RoleType   `json:"role"`
	Username        string     `json:"username"`
	InstitutionName string     `json:"institutionName"`
}

// Node is a (name, id) pair identifying one navigation graph node. The
// resolver embeds the full node list in its oracle request.
type Node struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Nodes flattens all rooms across all floors into (name, id) pairs,
// preserving floor/room order.
func (l *Layout) Nodes() []Node {
	var nodes []Node
	for _, f := range l.Floors {
		for _, r := range f.Rooms {
			nodes = append(nodes, Node{Name: r.Name, ID: r.ID})
		}
	}
	return nodes
}

// RoomCount returns the total number of rooms across all floors.
func (l *Layout) RoomCount() int {
	n := 0
	for _, f := range l.Floors {
		n += len(f.Rooms)
	}
	return n
}
