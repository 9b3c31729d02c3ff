package domain

// Departments lists the sales offices that may file repair requests.
var Departments = []string{
	"上海办", "苏州办", "北京办", "青岛办", "深圳办", "厦门办", "杭州办", "宁波办", "长沙办",
}

// Regions lists the technical-support regions.
var Regions = []string{"husu", "qingdao", "south", "zhejiang"}

// deptToRegion routes each applying department to the technical-support
// region that serves it.
var deptToRegion = map[string]string{
	"上海办": "husu",
	"苏州办": "husu",
	"北京办": "qingdao",
	"青岛办": "qingdao",
	"深圳办": "south",
	"厦门办": "south",
	"杭州办": "zhejiang",
	"宁波办": "zhejiang",
	"长沙办": "south",
}

// RegionForDepartment resolves the tech-support region serving a department.
func RegionForDepartment(department string) (string, bool) {
	region, ok := deptToRegion[department]
	return region, ok
}
