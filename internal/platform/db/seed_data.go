package db

type seedRef struct {
	ID   int
	Name string
}

type seedDesignation struct {
	ID           int
	Name         string
	DepartmentID int
}

type seedEmployee struct {
	ID             int
	FullName       string
	Email          string
	Password       string
	DepartmentID   int
	DesignationID  int
	EmployeeTypeID int
	HireDate       string
	DateOfBirth    string
	Gender         string
	Salary         float64
	Country        string
	CountryCode    string
	IBAN           string
}

var seedDepartments = []seedRef{
	{1, "IT"},
	{2, "HR"},
	{3, "Sales"},
	{4, "Admin"},
}

var seedEmployeeTypes = []seedRef{
	{1, "Permanent"},
	{2, "Temporary"},
	{3, "Contract"},
	{4, "Intern"},
}

var seedDesignations = []seedDesignation{
	{1, "Software Developer", 1},
	{2, "System Administrator", 1},
	{3, "Network Engineer", 1},
	{4, "HR Specialist", 2},
	{5, "HR Manager", 2},
	{6, "Talent Acquisition Coordinator", 2},
	{7, "Sales Executive", 3},
	{8, "Sales Manager", 3},
	{9, "Account Executive", 3},
	{10, "Office Manager", 4},
	{11, "Executive Assistant", 4},
	{12, "Receptionist", 4},
}

var seedEmployees = []seedEmployee{
	{1, "John Doe", "john@example.com", "John123!", 1, 1, 1, "2020-01-15", "1990-03-12", "Male", 60000, "Bulgaria", "bg", "BG80BNBG96611020345678"},
	{2, "Jane Smith", "jane@example.com", "Jane123!", 2, 5, 1, "2018-05-20", "1985-08-22", "Female", 80000, "Germany", "de", "DE89370400440532013000"},
	{3, "Sam Wilson", "sam@example.com", "Sam123!", 3, 7, 3, "2021-03-10", "1992-06-30", "Male", 50000, "France", "fr", "FR7630006000011234567890189"},
	{4, "Anna Taylor", "anna@example.com", "Anna123!", 4, 11, 2, "2022-07-05", "1995-11-15", "Female", 40000, "Italy", "it", "IT60X0542811101000000123456"},
	{5, "Tom Brown", "tom@example.com", "Tom123!", 1, 3, 1, "2019-04-18", "1989-02-25", "Male", 70000, "Spain", "es", "ES9121000418450200051332"},
	{6, "Emma Davis", "emma@example.com", "Emma123!", 2, 4, 1, "2017-10-12", "1987-09-10", "Female", 75000, "Poland", "pl", "PL61109010140000071219812874"},
	{7, "Luke Miller", "luke@example.com", "Luke123!", 3, 8, 3, "2020-02-20", "1990-01-05", "Male", 85000, "Romania", "ro", "RO49AAAA1B31007593840000"},
	{8, "Olivia Johnson", "olivia@example.com", "Olivia123!", 4, 10, 1, "2021-06-08", "1993-04-18", "Female", 65000, "Sweden", "se", "SE3550000000054910000003"},
	{9, "Mia Moore", "mia@example.com", "Mia123!", 1, 2, 4, "2022-08-15", "1997-12-20", "Female", 30000, "Greece", "gr", "GR1601101250000000012300695"},
	{10, "Chris Evans", "chris@example.com", "Chris123!", 2, 6, 2, "2018-11-25", "1986-07-12", "Other", 55000, "Netherlands", "nl", "NL91ABNA0417164300"},
	{11, "Sophia White", "sophia@example.com", "Sophia123!", 3, 7, 1, "2019-09-10", "1994-05-06", "Female", 52000, "Belgium", "be", "BE68539007547034"},
	{12, "Liam Green", "liam@example.com", "Liam123!", 4, 12, 2, "2020-10-03", "1996-08-21", "Male", 38000, "Czech Republic", "cz", "CZ6508000000192000145399"},
	{13, "Noah Black", "noah@example.com", "Noah123!", 1, 2, 1, "2018-12-01", "1991-09-18", "Male", 65000, "Austria", "at", "AT611904300234573201"},
	{14, "Isabella Blue", "isabella@example.com", "Isabella123!", 2, 4, 1, "2017-11-30", "1988-04-02", "Female", 76000, "Portugal", "pt", "PT50000201231234567890154"},
	{15, "James Brown", "james@example.com", "James123!", 3, 9, 3, "2021-07-21", "1993-03-17", "Male", 62000, "Croatia", "hr", "HR1210010051863000160"},
}
