package sandbox

// Example is a bundled filter script.
type Example struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// Examples are working scripts users can start from.
var Examples = []Example{
	{
		Title:       "Skip Small Files",
		Description: "Skip downloads smaller than 1MB",
		Code: `function filter(download) {
  const minSize = 1024 * 1024; // 1MB
  return {
    skip: download.fileSize < minSize
  };
}`,
	},
	{
		Title:       "Organize by File Type",
		Description: "Sort downloads into folders by file extension",
		Code: `function filter(download) {
  const extension = download.filename.split('.').pop().toLowerCase();

  const folders = {
    'jpg': 'Images',
    'png': 'Images',
    'gif': 'Images',
    'mp4': 'Videos',
    'mkv': 'Videos',
    'avi': 'Videos',
    'pdf': 'Documents',
    'doc': 'Documents',
    'docx': 'Documents',
    'zip': 'Archives',
    'rar': 'Archives',
    '7z': 'Archives'
  };

  return {
    skip: false,
    dir: folders[extension] || 'Other'
  };
}`,
	},
	{
		Title:       "Skip Specific Domains",
		Description: "Skip downloads from certain domains",
		Code: `function filter(download) {
  const url = new URL(download.url);
  const blockedDomains = ['ads.example.com', 'tracker.site.com'];

  return {
    skip: blockedDomains.includes(url.hostname)
  };
}`,
	},
	{
		Title:       "Rename with Date",
		Description: "Add current date to filename",
		Code: "function filter(download) {\n" +
			"  const date = new Date().toISOString().split('T')[0]; // YYYY-MM-DD\n" +
			"  const baseName = download.filename.split('.').slice(0, -1).join('.');\n" +
			"  const extension = download.filename.split('.').pop();\n" +
			"\n" +
			"  return {\n" +
			"    skip: false,\n" +
			"    filename: `${baseName}_${date}.${extension}`\n" +
			"  };\n" +
			"}",
	},
}
