package domain

import (
	"encoding/json"
	"time"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Page is the paginated envelope used by list endpoints.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Zone is a collection zone.
type Zone struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Code           string          `json:"code"`
	Boundary       json.RawMessage `json:"boundary,omitempty" table:"-"`
	Description    string          `json:"description" table:"wide"`
	Population     int64           `json:"population" table:"wide"`
	AreaSqKm       float64         `json:"areaSqKm" table:"wide"`
	BinCount       int             `json:"binCount"`
	ActiveBinCount int             `json:"activeBinCount"`
	CreatedAt      time.Time       `json:"createdAt" table:"wide"`
	UpdatedAt      time.Time       `json:"updatedAt" table:"wide"`
}

// BinStatus is the operational status of a bin.
type BinStatus string

const (
	BinActive      BinStatus = "active"
	BinMaintenance BinStatus = "maintenance"
	BinDamaged     BinStatus = "damaged"
	BinInactive    BinStatus = "inactive"
)

// WasteBin is a physical bin with an optional fill-level sensor.
type WasteBin struct {
	ID                int64       `json:"id"`
	BinID             string      `json:"binId"`
	Location          Coordinates `json:"location" table:"-"`
	Address           string      `json:"address"`
	Zone              int64       `json:"zone" table:"wide"`
	ZoneName          string      `json:"zoneName,omitempty"`
	BinType           string      `json:"binType"`
	Capacity          float64     `json:"capacity" table:"wide"`
	Status            BinStatus   `json:"status"`
	IsActive          bool        `json:"isActive" table:"wide"`
	CurrentFillLevel  float64     `json:"currentFillLevel"`
	LastEmptied       *time.Time  `json:"lastEmptied,omitempty" table:"wide"`
	LastSensorReading *time.Time  `json:"lastSensorReading,omitempty" table:"wide"`
	SensorID          string      `json:"sensorId,omitempty" table:"wide"`
	FirmwareVersion   string      `json:"firmwareVersion,omitempty" table:"-"`
	BatteryLevel      float64     `json:"batteryLevel"`
	InstallationDate  string      `json:"installationDate" table:"-"`
	InstalledBy       string      `json:"installedBy" table:"-"`
	Image             string      `json:"image,omitempty" table:"-"`
	QRCode            string      `json:"qrCode,omitempty" table:"-"`
	Notes             string      `json:"notes" table:"-"`
	CreatedAt         time.Time   `json:"createdAt" table:"-"`
	UpdatedAt         time.Time   `json:"updatedAt" table:"-"`
}

// SensorReading is one sample reported by a bin sensor.
type SensorReading struct {
	ID             int64     `json:"id"`
	Bin            int64     `json:"bin"`
	FillLevel      float64   `json:"fillLevel"`
	Temperature    *float64  `json:"temperature,omitempty"`
	Humidity       *float64  `json:"humidity,omitempty" table:"wide"`
	BatteryLevel   float64   `json:"batteryLevel"`
	SignalStrength *float64  `json:"signalStrength,omitempty" table:"wide"`
	Weight         *float64  `json:"weight,omitempty" table:"wide"`
	MethaneLevel   *float64  `json:"methaneLevel,omitempty" table:"wide"`
	Timestamp      time.Time `json:"timestamp"`
	ReceivedAt     time.Time `json:"receivedAt" table:"wide"`
	IsValid        bool      `json:"isValid"`
	ErrorMessage   string    `json:"errorMessage,omitempty" table:"wide"`
}

// Severity is the urgency of an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Urgent reports whether the severity warrants an immediate user notification.
func (s Severity) Urgent() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// AlertStatus is the workflow status of an alert.
type AlertStatus string

const (
	AlertNew          AlertStatus = "new"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertInProgress   AlertStatus = "in_progress"
	AlertResolved     AlertStatus = "resolved"
	AlertClosed       AlertStatus = "closed"
)

// Alert is an operational alert raised by sensors, drivers or citizens.
type Alert struct {
	ID             int64           `json:"id"`
	AlertType      string          `json:"alertType"`
	Severity       Severity        `json:"severity"`
	Status         AlertStatus     `json:"status"`
	Title          string          `json:"title"`
	Message        string          `json:"message" table:"wide"`
	Bin            *int64          `json:"bin,omitempty" table:"wide"`
	BinID          string          `json:"binId,omitempty"`
	Route          *int64          `json:"route,omitempty" table:"wide"`
	Vehicle        *int64          `json:"vehicle,omitempty" table:"wide"`
	ReportedBy     *int64          `json:"reportedBy,omitempty" table:"-"`
	Location       *Coordinates    `json:"location,omitempty" table:"-"`
	Address        string          `json:"address,omitempty" table:"wide"`
	AssignedTo     *int64          `json:"assignedTo,omitempty" table:"wide"`
	AcknowledgedBy *int64          `json:"acknowledgedBy,omitempty" table:"-"`
	ResolvedBy     *int64          `json:"resolvedBy,omitempty" table:"-"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt" table:"-"`
	AcknowledgedAt *time.Time      `json:"acknowledgedAt,omitempty" table:"-"`
	ResolvedAt     *time.Time      `json:"resolvedAt,omitempty" table:"-"`
	ClosedAt       *time.Time      `json:"closedAt,omitempty" table:"-"`
	Metadata       json.RawMessage `json:"metadata,omitempty" table:"-"`
	Attachments    []string        `json:"attachments,omitempty" table:"-"`
}

// AlertComment is a comment on an alert.
type AlertComment struct {
	ID        int64     `json:"id"`
	Alert     int64     `json:"alert" table:"-"`
	Author    int64     `json:"author"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Vehicle is a collection vehicle.
type Vehicle struct {
	ID                  int64        `json:"id"`
	RegistrationNumber  string       `json:"registrationNumber"`
	VehicleType         string       `json:"vehicleType"`
	Make                string       `json:"make" table:"wide"`
	Model               string       `json:"model" table:"wide"`
	Year                int          `json:"year" table:"wide"`
	CapacityKg          float64      `json:"capacityKg" table:"wide"`
	CapacityLiters      float64      `json:"capacityLiters" table:"-"`
	Status              string       `json:"status"`
	CurrentLocation     *Coordinates `json:"currentLocation,omitempty" table:"-"`
	LastLocationUpdate  *time.Time   `json:"lastLocationUpdate,omitempty"`
	FuelType            string       `json:"fuelType" table:"-"`
	FuelEfficiency      float64      `json:"fuelEfficiency" table:"-"`
	LastMaintenanceDate string       `json:"lastMaintenanceDate,omitempty" table:"-"`
	NextMaintenanceDate string       `json:"nextMaintenanceDate,omitempty" table:"wide"`
	AssignedDriver      *int64       `json:"assignedDriver,omitempty" table:"wide"`
	CreatedAt           time.Time    `json:"createdAt" table:"-"`
	UpdatedAt           time.Time    `json:"updatedAt" table:"-"`
}

// RouteStatus is the lifecycle status of a collection route.
type RouteStatus string

const (
	RoutePlanned   RouteStatus = "planned"
	RouteActive    RouteStatus = "active"
	RouteCompleted RouteStatus = "completed"
	RouteCancelled RouteStatus = "cancelled"
)

// CollectionRoute is a planned collection run.
type CollectionRoute struct {
	ID                       int64           `json:"id"`
	Name                     string          `json:"name"`
	Code                     string          `json:"code"`
	Description              string          `json:"description" table:"-"`
	ScheduledDate            string          `json:"scheduledDate"`
	ScheduledStartTime       string          `json:"scheduledStartTime" table:"wide"`
	EstimatedDuration        string          `json:"estimatedDuration" table:"wide"`
	AssignedVehicle          int64           `json:"assignedVehicle" table:"wide"`
	AssignedDriver           int64           `json:"assignedDriver" table:"wide"`
	AssignedCollectors       []int64         `json:"assignedCollectors" table:"-"`
	Zone                     int64           `json:"zone" table:"wide"`
	TotalDistance            float64         `json:"totalDistance"`
	EstimatedFuelConsumption float64         `json:"estimatedFuelConsumption" table:"-"`
	Status                   RouteStatus     `json:"status"`
	ActualStartTime          *time.Time      `json:"actualStartTime,omitempty" table:"-"`
	ActualEndTime            *time.Time      `json:"actualEndTime,omitempty" table:"-"`
	ActualDistance           *float64        `json:"actualDistance,omitempty" table:"-"`
	ActualFuelConsumption    *float64        `json:"actualFuelConsumption,omitempty" table:"-"`
	OptimizationScore        float64         `json:"optimizationScore" table:"wide"`
	RouteGeometry            json.RawMessage `json:"routeGeometry,omitempty" table:"-"`
	BinCount                 int             `json:"binCount"`
	CreatedAt                time.Time       `json:"createdAt" table:"-"`
	UpdatedAt                time.Time       `json:"updatedAt" table:"-"`
	CreatedBy                *int64          `json:"createdBy,omitempty" table:"-"`
}

// RouteStop is one bin visit on a route.
type RouteStop struct {
	ID                   int64      `json:"id"`
	Route                int64      `json:"route" table:"-"`
	Bin                  int64      `json:"bin"`
	BinID                string     `json:"binId,omitempty"`
	StopOrder            int        `json:"stopOrder"`
	EstimatedArrivalTime string     `json:"estimatedArrivalTime"`
	EstimatedDuration    string     `json:"estimatedDuration" table:"wide"`
	ActualArrivalTime    *time.Time `json:"actualArrivalTime,omitempty" table:"wide"`
	ActualDepartureTime  *time.Time `json:"actualDepartureTime,omitempty" table:"-"`
	FillLevelBefore      *float64   `json:"fillLevelBefore,omitempty" table:"wide"`
	FillLevelAfter       *float64   `json:"fillLevelAfter,omitempty" table:"-"`
	CollectedWeight      *float64   `json:"collectedWeight,omitempty" table:"wide"`
	IsCompleted          bool       `json:"isCompleted"`
	Skipped              bool       `json:"skipped"`
	SkipReason           string     `json:"skipReason,omitempty" table:"wide"`
	Notes                string     `json:"notes,omitempty" table:"-"`
}

// KPI is one key performance indicator sample.
type KPI struct {
	ID                    int64     `json:"id"`
	KPIType               string    `json:"kpiType"`
	Zone                  *int64    `json:"zone,omitempty" table:"wide"`
	Value                 float64   `json:"value"`
	Target                float64   `json:"target"`
	Unit                  string    `json:"unit"`
	Date                  string    `json:"date"`
	PeriodType            string    `json:"periodType" table:"wide"`
	PerformancePercentage float64   `json:"performancePercentage"`
	CreatedAt             time.Time `json:"createdAt" table:"-"`
	UpdatedAt             time.Time `json:"updatedAt" table:"-"`
}

// Prediction is a model output for a bin or a zone.
type Prediction struct {
	ID              int64     `json:"id"`
	PredictionType  string    `json:"predictionType"`
	Bin             *int64    `json:"bin,omitempty"`
	Zone            *int64    `json:"zone,omitempty" table:"wide"`
	PredictionDate  string    `json:"predictionDate"`
	PredictionTime  string    `json:"predictionTime,omitempty" table:"wide"`
	PredictedValue  float64   `json:"predictedValue"`
	ConfidenceScore float64   `json:"confidenceScore"`
	ModelName       string    `json:"modelName" table:"wide"`
	ModelVersion    string    `json:"modelVersion" table:"wide"`
	FeaturesUsed    []string  `json:"featuresUsed" table:"-"`
	ActualValue     *float64  `json:"actualValue,omitempty" table:"wide"`
	ErrorMargin     *float64  `json:"errorMargin,omitempty" table:"-"`
	CreatedAt       time.Time `json:"createdAt" table:"-"`
}

// DashboardWidget is a single tile on a dashboard.
type DashboardWidget struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Title    string          `json:"title"`
	Config   json.RawMessage `json:"config,omitempty"`
	Position struct {
		X int `json:"x"`
		Y int `json:"y"`
		W int `json:"w"`
		H int `json:"h"`
	} `json:"position"`
}

// Dashboard is a saved analytics dashboard.
type Dashboard struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description" table:"wide"`
	User        *int64            `json:"user,omitempty" table:"-"`
	IsDefault   bool              `json:"isDefault"`
	IsPublic    bool              `json:"isPublic"`
	Layout      json.RawMessage   `json:"layout,omitempty" table:"-"`
	Widgets     []DashboardWidget `json:"widgets"`
	CreatedAt   time.Time         `json:"createdAt" table:"-"`
	UpdatedAt   time.Time         `json:"updatedAt" table:"-"`
}

// Report is a generated analytics report.
type Report struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	ReportType string          `json:"reportType"`
	Status     string          `json:"status"`
	Parameters json.RawMessage `json:"parameters,omitempty" table:"-"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ExportJob is an asynchronous data export.
type ExportJob struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"createdAt"`
}

// AlertRule raises alerts automatically when its conditions match.
type AlertRule struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	AlertType   string          `json:"alertType"`
	Severity    Severity        `json:"severity"`
	Zone        *int64          `json:"zone,omitempty" table:"wide"`
	Conditions  json.RawMessage `json:"conditions,omitempty" table:"-"`
	IsActive    bool            `json:"isActive"`
	Description string          `json:"description,omitempty" table:"wide"`
	CreatedAt   time.Time       `json:"createdAt" table:"-"`
}

// MaintenanceRecord is a service entry for a bin or a vehicle.
type MaintenanceRecord struct {
	ID              int64      `json:"id"`
	MaintenanceType string     `json:"maintenanceType"`
	Description     string     `json:"description"`
	PerformedBy     *int64     `json:"performedBy,omitempty" table:"wide"`
	PerformedAt     *time.Time `json:"performedAt,omitempty"`
	ScheduledDate   string     `json:"scheduledDate,omitempty" table:"wide"`
	Cost            *float64   `json:"cost,omitempty" table:"wide"`
	Notes           string     `json:"notes,omitempty" table:"-"`
}
