package model

import "time"

// Category groups tasks by area (cleaning, shopping, kids, etc.).
type Category struct {
	ID        string `gorm:"primaryKey"`
	FamilyID  string `gorm:"index:idx_family_category_name,unique"`
	Name      string `gorm:"index:idx_family_category_name,unique"`
	Color     string
	Icon      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultCategories seeds a fresh family with the usual household areas.
var DefaultCategories = []Category{
	{Name: "Cleaning", Color: "#10B981", Icon: "🧹"},
	{Name: "Shopping", Color: "#F59E0B", Icon: "🛒"},
	{Name: "Cooking", Color: "#EF4444", Icon: "🍳"},
	{Name: "Kids", Color: "#8B5CF6", Icon: "👶"},
	{Name: "Work", Color: "#3B82F6", Icon: "💼"},
	{Name: "Health", Color: "#EC4899", Icon: "💪"},
	{Name: "Finance", Color: "#14B8A6", Icon: "💰"},
	{Name: "Other", Color: "#6B7280", Icon: "📌"},
}
