package schema

// Cadre is an organizational/professional category grouping health workers,
// e.g. nurse or doctor. A cadre cannot be deleted while it still owns workers.
type Cadre struct {
	CadID         uint   `gorm:"primaryKey" json:"cadID"`
	Name          string `gorm:"size:255;not null" json:"name"`
	Description   string `json:"description"`
	Qualification string `gorm:"not null" json:"qualification"`

	HealthWorkers []HealthWorker `gorm:"foreignKey:CadreID" json:"-"`
	Projects      []Project      `gorm:"foreignKey:CadreID" json:"-"`
}

// Roles a health worker account can log in as. Comparison is always
// case-insensitive.
const (
	RoleHealthWorker = "health_worker"
	RoleAdmin        = "admin"
	RoleParent       = "parent"
	RoleUmunyabuzima = "umunyabuzima"
)

func Roles() []string {
	return []string{RoleHealthWorker, RoleAdmin, RoleParent, RoleUmunyabuzima}
}

type HealthWorker struct {
	HwID      uint    `gorm:"primaryKey" json:"hwID"`
	Name      string  `gorm:"size:255;not null" json:"name"`
	Gender    string  `gorm:"size:50;not null" json:"gender"`
	Dob       string  `gorm:"size:50;not null" json:"dob"`
	Role      string  `gorm:"size:100;not null" json:"role"`
	Telephone string  `gorm:"size:50;unique;not null" json:"telephone"`
	Email     string  `gorm:"size:254;unique;not null" json:"email"`
	Password  []byte  `json:"-"`
	Image     *string `json:"image"`
	Address   string  `gorm:"not null" json:"address"`

	// Belongs-to foreign keys follow gorm's <Type>ID naming so the relation
	// resolves as belongs-to; a foreignKey tag naming a field that also
	// exists on the referenced struct flips the constraint direction.
	CadreID uint   `gorm:"column:cad_id;not null" json:"cadID"`
	Cadre   *Cadre `json:"cadre,omitempty"`

	HealthRecords []ChildHealthRecord `gorm:"foreignKey:HealthWorkerID;constraint:OnDelete:CASCADE" json:"-"`
	Assignments   []ProjectAssignment `gorm:"foreignKey:HealthWorkerID;constraint:OnDelete:CASCADE" json:"-"`
}

type Child struct {
	ChildID       uint    `gorm:"primaryKey" json:"childID"`
	Name          string  `gorm:"size:255;not null" json:"name"`
	Gender        string  `gorm:"size:50;not null" json:"gender"`
	Dob           string  `gorm:"size:50;not null" json:"dob"`
	Image         *string `json:"image"`
	Address       string  `gorm:"not null" json:"address"`
	ParentName    string  `gorm:"size:255;not null" json:"parentName"`
	ParentContact string  `gorm:"size:50;not null" json:"parentContact"`

	BirthProperty *BirthProperty      `gorm:"foreignKey:ChildID;constraint:OnDelete:CASCADE" json:"birthProperty,omitempty"`
	HealthRecords []ChildHealthRecord `gorm:"foreignKey:ChildID;constraint:OnDelete:CASCADE" json:"healthRecords,omitempty"`
}

// BirthProperty holds birth-time clinical attributes for a child. The unique
// index on ChildID enforces the 0-or-1 cardinality at the storage level.
type BirthProperty struct {
	BID              uint    `gorm:"primaryKey" json:"bID"`
	ChildID          uint    `gorm:"uniqueIndex;not null" json:"childID"`
	MotherAge        int     `gorm:"not null" json:"motherAge"`
	FatherAge        int     `gorm:"not null" json:"fatherAge"`
	NumberOfChildren int     `gorm:"not null" json:"numberOfChildren"`
	BirthType        string  `gorm:"size:255;not null" json:"birthType"`
	BirthWeight      float64 `gorm:"not null" json:"birthWeight"`
	ChildCondition   string  `gorm:"size:255;not null" json:"childCondition"`

	Child *Child `json:"child,omitempty"`
}

// ChildHealthRecord is a single checkup event for a child performed by a
// health worker. The composite unique index backs the duplicate-assignment
// pre-check so it also holds under concurrent writers.
type ChildHealthRecord struct {
	RecordID       uint    `gorm:"primaryKey" json:"recordID"`
	ChildID        uint    `gorm:"not null;uniqueIndex:idx_record_child_worker" json:"childID"`
	HealthWorkerID uint    `gorm:"not null;uniqueIndex:idx_record_child_worker" json:"healthWorkerID"`
	CheckupDate    string  `gorm:"size:50;not null" json:"checkupDate"`
	Height         float64 `gorm:"not null" json:"height"`
	Weight         float64 `gorm:"not null" json:"weight"`
	Vaccination    string  `gorm:"size:255;not null" json:"vaccination"`
	Diagnosis      string  `gorm:"size:500;not null" json:"diagnosis"`
	Treatment      string  `gorm:"size:500;not null" json:"treatment"`

	Child        *Child        `json:"child,omitempty"`
	HealthWorker *HealthWorker `json:"healthWorker,omitempty"`

	Restrictions []HealthRestriction `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"-"`
}

// Severity values are conventional, not enforced.
const (
	SeverityMild     = "Mild"
	SeverityModerate = "Moderate"
	SeveritySevere   = "Severe"
)

type HealthRestriction struct {
	HrID        uint   `gorm:"primaryKey" json:"hrID"`
	RecordID    uint   `gorm:"not null" json:"recordID"`
	Description string `gorm:"size:500;not null" json:"description"`
	Severity    string `gorm:"size:255;not null" json:"severity"`

	Record *ChildHealthRecord `json:"childHealthRecord,omitempty"`
}

type Project struct {
	PrjID       uint    `gorm:"primaryKey" json:"prjID"`
	CadreID     uint    `gorm:"column:cad_id;not null" json:"cadID"`
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"not null" json:"description"`
	StartDate   string  `gorm:"size:50;not null" json:"startDate"`
	EndDate     *string `gorm:"size:50" json:"endDate"`
	Status      string  `gorm:"size:100;not null" json:"status"`

	Cadre *Cadre `json:"cadre,omitempty"`

	Assignments []ProjectAssignment `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

// ProjectAssignment is a time-bounded role a health worker holds on a project.
type ProjectAssignment struct {
	AsgID          uint    `gorm:"primaryKey" json:"asgID"`
	HealthWorkerID uint    `gorm:"column:hw_id;not null" json:"hwID"`
	ProjectID      uint    `gorm:"column:prj_id;not null" json:"prjID"`
	AssignedDate   string  `gorm:"size:50;not null" json:"assignedDate"`
	EndDate        *string `gorm:"size:50" json:"endDate"`
	Role           string  `gorm:"size:255;not null" json:"role"`

	HealthWorker *HealthWorker `json:"healthWorker,omitempty"`
	Project      *Project      `json:"project,omitempty"`
}

// Tables lists every model in migration order.
func Tables() []interface{} {
	return []interface{}{
		&Cadre{}, &HealthWorker{}, &Child{}, &BirthProperty{},
		&ChildHealthRecord{}, &HealthRestriction{}, &Project{}, &ProjectAssignment{},
	}
}
