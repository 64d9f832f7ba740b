package model

// DefaultMaterialName is assigned to parts whose material cannot be resolved.
const DefaultMaterialName = "Plywood_19mm"

// DefaultMaterials returns the built-in stock catalog.
func DefaultMaterials() []StockMaterial {
	return []StockMaterial{
		{Name: "Plywood_19mm", Width: 2440, Height: 1220, Price: 45, Supplier: "Local Supplier", Notes: "19mm Birch Plywood"},
		{Name: "Plywood_12mm", Width: 2440, Height: 1220, Price: 35, Supplier: "Local Supplier", Notes: "12mm Birch Plywood"},
		{Name: "MDF_16mm", Width: 2800, Height: 2070, Price: 25, Supplier: "Local Supplier", Notes: "16mm MDF Board"},
		{Name: "MDF_19mm", Width: 2800, Height: 2070, Price: 30, Supplier: "Local Supplier", Notes: "19mm MDF Board"},
		{Name: "Oak_Veneer", Width: 2440, Height: 1220, Price: 85, Supplier: "Hardwood Supplier", Notes: "Oak Veneer on MDF"},
		{Name: "Melamine_White", Width: 2800, Height: 2070, Price: 40, Supplier: "Local Supplier", Notes: "White Melamine Board"},
	}
}
