package model

// PermissionModule is a group of features, mirrored from the permission
// manifest. Rows are only written by the synchronizer.
type PermissionModule struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	ModuleID    string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"module_id"`
	ModuleName  string  `gorm:"type:varchar(255);not null" json:"module_name"`
	Description *string `gorm:"type:text" json:"description"`
	SortOrder   int     `gorm:"not null" json:"sort_order"`
}

// PermissionFeature is one grantable capability. Its permission key is
// "<module_id>.<feature_id>".
type PermissionFeature struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	ModuleID       string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_module_feature,priority:1" json:"module_id"`
	FeatureID      string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_module_feature,priority:2" json:"feature_id"`
	FeatureName    string  `gorm:"type:varchar(255);not null" json:"feature_name"`
	Description    *string `gorm:"type:text" json:"description"`
	DefaultEnabled bool    `gorm:"not null" json:"default_enabled"`
}

func (f PermissionFeature) Key() string {
	return f.ModuleID + "." + f.FeatureID
}
