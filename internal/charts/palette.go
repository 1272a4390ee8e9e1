package charts

var (
	performanceFill = []string{
		"rgba(102, 126, 234, 0.8)",
		"rgba(118, 75, 162, 0.8)",
		"rgba(255, 99, 132, 0.8)",
		"rgba(54, 162, 235, 0.8)",
		"rgba(255, 206, 86, 0.8)",
	}
	performanceBorder = []string{
		"rgb(102, 126, 234)",
		"rgb(118, 75, 162)",
		"rgb(255, 99, 132)",
		"rgb(54, 162, 235)",
		"rgb(255, 206, 86)",
	}

	distributionFill = []string{
		"rgba(102, 126, 234, 0.8)",
		"rgba(118, 75, 162, 0.8)",
		"rgba(255, 99, 132, 0.8)",
		"rgba(201, 203, 207, 0.8)",
	}
	distributionBorder = []string{
		"rgb(102, 126, 234)",
		"rgb(118, 75, 162)",
		"rgb(255, 99, 132)",
		"rgb(201, 203, 207)",
	}
)
